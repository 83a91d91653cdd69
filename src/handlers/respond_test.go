package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	store "money-server/src/db"
	"money-server/src/ledger"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", invalid("amount must be positive"), http.StatusBadRequest, "amount must be positive"},
		{"not found", fmt.Errorf("get account: %w", store.ErrNotFound), http.StatusNotFound, "not found"},
		{"rule violation", fmt.Errorf("link: %w", ledger.ErrSameAccount), http.StatusConflict, ledger.ErrSameAccount.Error()},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "failed to link transactions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/transactions/1/link", nil)
			rec := httptest.NewRecorder()
			writeError(rec, req, tt.err, "link transactions")
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestQueryPage(t *testing.T) {
	tests := []struct {
		query   string
		want    store.Page
		wantErr bool
	}{
		{"", store.Page{Limit: store.DefaultPageSize}, false},
		{"limit=10&offset=20", store.Page{Limit: 10, Offset: 20}, false},
		{"limit=100000", store.Page{Limit: store.MaxPageSize}, false},
		{"limit=abc", store.Page{}, true},
		{"offset=-1", store.Page{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := queryPage(httptest.NewRequest(http.MethodGet, "/api/transactions?"+tt.query, nil))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathID(t *testing.T) {
	var got int64
	var gotErr error
	r := chi.NewRouter()
	r.Get("/accounts/{account_id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = pathID(r, "account_id")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/accounts/42", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, int64(42), got)

	for _, raw := range []string{"0", "-3", "abc"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/accounts/"+raw, nil))
		assert.Error(t, gotErr, raw)
	}
}

func TestPagedNeverNull(t *testing.T) {
	resp := paged[int](nil, 0, store.Page{Limit: 25})
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 25, resp.Limit)
}

func TestClearCache(t *testing.T) {
	cache, err := store.NewCache()
	require.NoError(t, err)
	defer cache.Close()
	env := &Env{Cache: cache}

	r := chi.NewRouter()
	r.Post("/admin/cache/clear/{cache_name}", ClearCache(env))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/cache/clear/"+store.AccountCache, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cache cleared")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/cache/clear/users", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
