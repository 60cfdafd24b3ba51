package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/m5cents/call-screening-backend/internal/domain/blocklist"
	"github.com/m5cents/call-screening-backend/internal/domain/call"
	"github.com/m5cents/call-screening-backend/internal/domain/contact"
	"github.com/m5cents/call-screening-backend/internal/domain/values"
	"github.com/m5cents/call-screening-backend/internal/infrastructure/repository"
)

// ContactStore is the whitelist storage the admin API manages.
type ContactStore interface {
	List(ctx context.Context) ([]*contact.Contact, error)
	GetByID(ctx context.Context, id uuid.UUID) (*contact.Contact, error)
	Create(ctx context.Context, c *contact.Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BlocklistStore is the blacklist storage the admin API manages.
type BlocklistStore interface {
	List(ctx context.Context) ([]*blocklist.Entry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*blocklist.Entry, error)
	Create(ctx context.Context, e *blocklist.Entry) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CallLogStore is the outcome-record storage the admin API manages.
type CallLogStore interface {
	List(ctx context.Context, limit, offset int) ([]*call.LogEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Clear(ctx context.Context) error
}

// MatchInvalidator drops cached lookup results after a list mutation.
type MatchInvalidator interface {
	Invalidate(ctx context.Context)
}

// AdminHandler serves the dashboard's management API.
type AdminHandler struct {
	contacts  ContactStore
	blocklist BlocklistStore
	callLogs  CallLogStore
	cache     MatchInvalidator
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewAdminHandler creates the admin API handler set. cache may be nil.
func NewAdminHandler(contacts ContactStore, blocklistStore BlocklistStore, callLogs CallLogStore, cache MatchInvalidator, logger *slog.Logger) *AdminHandler {
	validate := validator.New()
	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		_, err := values.NewPhoneNumber(fl.Field().String())
		return err == nil
	})

	return &AdminHandler{
		contacts:  contacts,
		blocklist: blocklistStore,
		callLogs:  callLogs,
		cache:     cache,
		validate:  validate,
		logger:    logger,
	}
}

// Register mounts the admin routes on mux.
func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/contacts", h.listContacts)
	mux.HandleFunc("POST /api/v1/contacts", h.createContact)
	mux.HandleFunc("GET /api/v1/contacts/{id}", h.getContact)
	mux.HandleFunc("DELETE /api/v1/contacts/{id}", h.deleteContact)

	mux.HandleFunc("GET /api/v1/blacklist", h.listBlocklist)
	mux.HandleFunc("POST /api/v1/blacklist", h.createBlocklistEntry)
	mux.HandleFunc("DELETE /api/v1/blacklist/{id}", h.deleteBlocklistEntry)

	mux.HandleFunc("GET /api/v1/calls", h.listCallLogs)
	mux.HandleFunc("DELETE /api/v1/calls/{id}", h.deleteCallLog)
	mux.HandleFunc("DELETE /api/v1/calls", h.clearCallLogs)
}

type createContactRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
}

func (h *AdminHandler) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list contacts", "error", err)
		writeError(w, http.StatusInternalServerError, "LIST_FAILED", "Could not list contacts")
		return
	}
	if contacts == nil {
		contacts = []*contact.Contact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (h *AdminHandler) createContact(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	c, err := contact.NewContact(req.Name, req.PhoneNumber)
	if err != nil {
		writeAppError(w, err)
		return
	}

	if err := h.contacts.Create(r.Context(), c); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			writeError(w, http.StatusConflict, "DUPLICATE_NUMBER", "A contact with this number already exists")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to create contact", "error", err)
		writeError(w, http.StatusInternalServerError, "CREATE_FAILED", "Could not create contact")
		return
	}

	h.invalidateMatches(r.Context())
	writeJSON(w, http.StatusCreated, c)
}

func (h *AdminHandler) getContact(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	c, err := h.contacts.GetByID(r.Context(), id)
	if err != nil {
		if repository.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Contact not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to get contact", "error", err)
		writeError(w, http.StatusInternalServerError, "GET_FAILED", "Could not get contact")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *AdminHandler) deleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.contacts.Delete(r.Context(), id); err != nil {
		if repository.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Contact not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to delete contact", "error", err)
		writeError(w, http.StatusInternalServerError, "DELETE_FAILED", "Could not delete contact")
		return
	}
	h.invalidateMatches(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type createBlocklistRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Reason      string `json:"reason" validate:"max=500"`
	PatternType string `json:"pattern_type" validate:"omitempty,oneof=exact area_code prefix"`
}

func (h *AdminHandler) listBlocklist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.blocklist.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list blacklist", "error", err)
		writeError(w, http.StatusInternalServerError, "LIST_FAILED", "Could not list blacklist entries")
		return
	}
	if entries == nil {
		entries = []*blocklist.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *AdminHandler) createBlocklistEntry(w http.ResponseWriter, r *http.Request) {
	var req createBlocklistRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	patternType := blocklist.PatternType(req.PatternType)
	if req.PatternType == "" {
		patternType = blocklist.PatternExact
	}

	entry, err := blocklist.NewEntry(req.PhoneNumber, req.Reason, patternType)
	if err != nil {
		writeAppError(w, err)
		return
	}

	if err := h.blocklist.Create(r.Context(), entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			writeError(w, http.StatusConflict, "DUPLICATE_ENTRY", "This pattern is already blacklisted")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to create blacklist entry", "error", err)
		writeError(w, http.StatusInternalServerError, "CREATE_FAILED", "Could not create blacklist entry")
		return
	}

	h.invalidateMatches(r.Context())
	writeJSON(w, http.StatusCreated, entry)
}

func (h *AdminHandler) deleteBlocklistEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.blocklist.Delete(r.Context(), id); err != nil {
		if repository.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Blacklist entry not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to delete blacklist entry", "error", err)
		writeError(w, http.StatusInternalServerError, "DELETE_FAILED", "Could not delete blacklist entry")
		return
	}
	h.invalidateMatches(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) listCallLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := h.callLogs.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list call logs", "error", err)
		writeError(w, http.StatusInternalServerError, "LIST_FAILED", "Could not list call logs")
		return
	}
	if entries == nil {
		entries = []*call.LogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *AdminHandler) deleteCallLog(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.callLogs.Delete(r.Context(), id); err != nil {
		if repository.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Call log not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to delete call log", "error", err)
		writeError(w, http.StatusInternalServerError, "DELETE_FAILED", "Could not delete call log")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) clearCallLogs(w http.ResponseWriter, r *http.Request) {
	if err := h.callLogs.Clear(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to clear call logs", "error", err)
		writeError(w, http.StatusInternalServerError, "CLEAR_FAILED", "Could not clear call logs")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be JSON")
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, "VALIDATION_FAILED",
				"Invalid value for field "+verrs[0].Field())
			return false
		}
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
		return false
	}
	return true
}

func (h *AdminHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "ID must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *AdminHandler) invalidateMatches(ctx context.Context) {
	if h.cache != nil {
		h.cache.Invalidate(ctx)
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
