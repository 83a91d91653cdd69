package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-server/src/models"
)

const testSecret = "test-secret"

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestJWTAuthMiddleware(t *testing.T) {
	token, err := IssueToken(testSecret, time.Hour, models.User{ID: 7, Username: "kim", SuperAdmin: true})
	require.NoError(t, err)

	var gotID int64
	var gotAdmin bool
	h := JWTAuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserID(r.Context())
		gotAdmin = IsSuperAdmin(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), gotID)
	assert.True(t, gotAdmin)
}

func TestJWTAuthMiddlewareRejects(t *testing.T) {
	expired, err := IssueToken(testSecret, -time.Minute, models.User{ID: 1})
	require.NoError(t, err)
	wrongKey, err := IssueToken("other", time.Hour, models.User{ID: 1})
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"garbage", "Bearer abc.def"},
		{"expired", "Bearer " + expired},
		{"wrong key", "Bearer " + wrongKey},
		{"alg none", "Bearer " + none},
	}
	h := JWTAuthMiddleware(testSecret)(http.HandlerFunc(okHandler))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestSuperAdminMiddleware(t *testing.T) {
	h := SuperAdminMiddleware(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/cache/clear/accounts", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = req.WithContext(WithClaims(req.Context(), &Claims{UserID: 1, SuperAdmin: true}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSMiddleware(t *testing.T) {
	h := CORSMiddleware([]string{"https://money.example"})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/api/accounts", nil)
	req.Header.Set("Origin", "https://money.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://money.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestReadOnlyMiddleware(t *testing.T) {
	var gotBody string
	h := ReadOnlyMiddleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"get", http.MethodGet, "/api/accounts", "", http.StatusOK},
		{"login", http.MethodPost, "/api/login", "{}", http.StatusOK},
		{"create", http.MethodPost, "/api/accounts", "{}", http.StatusForbidden},
		{"delete", http.MethodDelete, "/api/accounts/1", "", http.StatusForbidden},
		{"graphql query", http.MethodPost, "/api/graphql", `{"query":"{ banks { totalCount } }"}`, http.StatusOK},
		{"graphql mutation", http.MethodPost, "/api/graphql", `{"query":" mutation { toggleReviewed(id: 1) { id } }"}`, http.StatusForbidden},
		{"graphql named query", http.MethodPost, "/api/graphql", `{"query":"query Banks { banks { totalCount } }","operationName":"Banks"}`, http.StatusOK},
		{"graphql comment before mutation", http.MethodPost, "/api/graphql", `{"query":"# note\nmutation { toggleReviewed(id: 1) { id } }"}`, http.StatusForbidden},
		{"graphql operation name selects mutation", http.MethodPost, "/api/graphql",
			`{"query":"query A { banks { totalCount } } mutation B { toggleReviewed(id: 1) { id } }","operationName":"B"}`, http.StatusForbidden},
		{"graphql operation name selects query", http.MethodPost, "/api/graphql",
			`{"query":"query A { banks { totalCount } } mutation B { toggleReviewed(id: 1) { id } }","operationName":"A"}`, http.StatusOK},
		{"graphql unnamed choice with mutation", http.MethodPost, "/api/graphql",
			`{"query":"query A { banks { totalCount } } mutation B { toggleReviewed(id: 1) { id } }"}`, http.StatusForbidden},
		{"graphql mutation over get", http.MethodGet, "/api/graphql", `{"query":"mutation { toggleReviewed(id: 1) { id } }"}`, http.StatusForbidden},
		{"graphql unparsable", http.MethodPost, "/api/graphql", `{"query":"mutation {"}`, http.StatusForbidden},
		{"graphql put", http.MethodPut, "/api/graphql", `{"query":"{ banks { totalCount } }"}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotBody = ""
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, tt.body, gotBody)
			}
		})
	}
}

func TestReadOnlyDisabled(t *testing.T) {
	h := ReadOnlyMiddleware(false)(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodDelete, "/api/accounts/1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccessLogKeepsStatus(t *testing.T) {
	h := AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
