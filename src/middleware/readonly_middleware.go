package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

const graphqlPath = "/api/graphql"

// ReadOnlyMiddleware rejects writes when enabled. Login, registration and the
// Plaid webhook stay open, and GraphQL requests pass unless the operation
// they run is a mutation.
func ReadOnlyMiddleware(enabled bool) func(http.Handler) http.Handler {
	allowedPosts := map[string]bool{
		"/api/login":         true,
		"/api/register":      true,
		"/api/plaid/webhook": true,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled || r.Method == http.MethodOptions || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			// The GraphQL handler reads a body whatever the method.
			if r.URL.Path == graphqlPath && (r.Method == http.MethodGet || r.Method == http.MethodPost) {
				if !isMutation(r) {
					next.ServeHTTP(w, r)
					return
				}
			} else if r.Method == http.MethodGet || (r.Method == http.MethodPost && allowedPosts[r.URL.Path]) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, "read-only mode: only GET requests are allowed", http.StatusForbidden)
		})
	}
}

// isMutation parses the GraphQL document in the request body and reports
// whether the operation it selects is a mutation. Bodies that cannot be
// parsed count as mutations. The body is restored for the next handler.
func isMutation(r *http.Request) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return true
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	if len(bytes.TrimSpace(body)) == 0 {
		return false
	}

	var params struct {
		Query         string `json:"query"`
		OperationName string `json:"operationName"`
	}
	if err := json.Unmarshal(body, &params); err != nil {
		return true
	}
	doc, err := parser.ParseQuery(&ast.Source{Input: params.Query})
	if err != nil {
		return true
	}
	return selectsMutation(doc.Operations, params.OperationName)
}

func selectsMutation(ops ast.OperationList, name string) bool {
	var op *ast.OperationDefinition
	switch {
	case name != "":
		op = ops.ForName(name)
	case len(ops) == 1:
		op = ops[0]
	}
	if op != nil {
		return op.Operation == ast.Mutation
	}
	// No single operation is selected, so refuse any document carrying one.
	for _, o := range ops {
		if o.Operation == ast.Mutation {
			return true
		}
	}
	return false
}
