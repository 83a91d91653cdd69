package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	store "money-server/src/db"
	db "money-server/src/db/sql"
	"money-server/src/logger"
	"money-server/src/models"
)

// validationError is a client mistake reported back as 400.
type validationError struct {
	msg string
}

func (e validationError) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return validationError{msg: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// writeError logs err and answers with the status it maps to. action names
// what failed, e.g. "create account".
func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var ve validationError
	switch {
	case errors.As(err, &ve):
		logger.Log.Warn().Str("path", r.URL.Path).Msgf("Invalid request to %s: %s", action, ve.msg)
		http.Error(w, ve.msg, http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		logger.Log.Warn().Str("path", r.URL.Path).Msgf("Not found during %s", action)
		http.Error(w, "not found", http.StatusNotFound)
	case db.IsRuleViolation(err):
		logger.Log.Warn().Err(err).Str("path", r.URL.Path).Msgf("Rejected %s", action)
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		logger.Log.Error().Err(err).Str("path", r.URL.Path).Msgf("Failed to %s", action)
		http.Error(w, "failed to "+action, http.StatusInternalServerError)
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return invalid("invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("invalid %s: %q", name, raw)
	}
	return id, nil
}

func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, invalid("invalid %s: %q", name, raw)
	}
	return &n, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalid("invalid %s: %q", name, raw)
	}
	return &b, nil
}

func queryCurrency(r *http.Request) (models.Currency, error) {
	c := models.Currency(r.URL.Query().Get("currency"))
	if c != "" && !c.Valid() {
		return "", invalid("invalid currency %q", c)
	}
	return c, nil
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, invalid("invalid %s: %q", name, raw)
	}
	return t, nil
}

// queryPage reads limit and offset.
func queryPage(r *http.Request) (store.Page, error) {
	var p store.Page
	for name, dst := range map[string]*int{"limit": &p.Limit, "offset": &p.Offset} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return p, invalid("invalid %s: %q", name, raw)
		}
		*dst = n
	}
	return p.Normalize(), nil
}

// pageResponse is the envelope for paged lists.
type pageResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func paged[T any](items []T, total int, p store.Page) pageResponse[T] {
	if items == nil {
		items = []T{}
	}
	return pageResponse[T]{Items: items, Total: total, Limit: p.Limit, Offset: p.Offset}
}
