package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContact(t *testing.T) {
	c, err := NewContact("Alice", "(555) 123-4567")
	require.NoError(t, err)

	assert.Equal(t, "Alice", c.Name)
	assert.Equal(t, "+15551234567", c.Number.String())
	assert.NotZero(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestNewContact_Invalid(t *testing.T) {
	_, err := NewContact("", "5551234567")
	assert.Error(t, err)

	_, err = NewContact("  ", "5551234567")
	assert.Error(t, err)

	_, err = NewContact("Alice", "not a number")
	assert.Error(t, err)
}
