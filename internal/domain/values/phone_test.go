package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoneNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare 10 digit US number",
			input: "5551234567",
			want:  "+15551234567",
		},
		{
			name:  "formatted US number",
			input: "(555) 123-4567",
			want:  "+15551234567",
		},
		{
			name:  "dotted US number",
			input: "555.123.4567",
			want:  "+15551234567",
		},
		{
			name:  "E164 US number",
			input: "+15551234567",
			want:  "+15551234567",
		},
		{
			name:  "11 digits with leading 1",
			input: "15551234567",
			want:  "+15551234567",
		},
		{
			name:  "international number kept as given",
			input: "+442071234567",
			want:  "+442071234567",
		},
		{
			name:  "short digit string kept as given",
			input: "12345",
			want:  "+12345",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "no digits",
			input:   "anonymous",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPhoneNumber(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNewPhoneNumber_Idempotent(t *testing.T) {
	inputs := []string{
		"5551234567",
		"(555) 123-4567",
		"+15551234567",
		"+442071234567",
		"1-800-555-0100",
	}

	for _, input := range inputs {
		once, err := NewPhoneNumber(input)
		require.NoError(t, err)

		twice, err := NewPhoneNumber(once.String())
		require.NoError(t, err)

		assert.Equal(t, once.String(), twice.String(), "normalize(normalize(%q))", input)
	}
}

func TestPhoneNumber_EquivalentFormatsMatch(t *testing.T) {
	formats := []string{
		"(555) 123-4567",
		"5551234567",
		"+15551234567",
		"555-123-4567",
		"1 (555) 123-4567",
	}

	want := MustNewPhoneNumber("+15551234567")
	for _, f := range formats {
		got := MustNewPhoneNumber(f)
		assert.True(t, got.Equal(want), "format %q", f)
	}
}

func TestPhoneNumber_AreaCode(t *testing.T) {
	assert.Equal(t, "555", MustNewPhoneNumber("+15551234567").AreaCode())
	assert.Equal(t, "420", MustNewPhoneNumber("+442071234567").AreaCode())
	assert.Equal(t, "", PhoneNumber{}.AreaCode())
}

func TestPhoneNumber_Digits(t *testing.T) {
	assert.Equal(t, "15551234567", MustNewPhoneNumber("5551234567").Digits())
}

func TestPhoneNumber_JSONRoundTrip(t *testing.T) {
	p := MustNewPhoneNumber("(555) 123-4567")

	data, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"+15551234567"`, string(data))

	var decoded PhoneNumber
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.True(t, p.Equal(decoded))
}

func TestPhoneNumber_Scan(t *testing.T) {
	var p PhoneNumber
	require.NoError(t, p.Scan("+15551234567"))
	assert.Equal(t, "+15551234567", p.String())

	require.NoError(t, p.Scan([]byte("5551234567")))
	assert.Equal(t, "+15551234567", p.String())

	assert.Error(t, p.Scan(42))
}
