// Package graph serves the GraphQL API used by the front end for browsing
// and entering ledger data.
package graph

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strconv"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/jackc/pgx/v5/pgxpool"

	store "money-server/src/db"
	db "money-server/src/db/sql"
	"money-server/src/ledger"
)

//go:embed schema.graphql
var schemaString string

const maxQueryDepth = 12

// Resolver is the root resolver. Nested resolvers keep a pointer to it for
// lookups.
type Resolver struct {
	pool   *pgxpool.Pool
	cache  *store.Cache
	bounds ledger.RatioBounds
}

func NewResolver(pool *pgxpool.Pool, cache *store.Cache, bounds ledger.RatioBounds) *Resolver {
	return &Resolver{pool: pool, cache: cache, bounds: bounds}
}

// ParseSchema binds the embedded schema to r.
func ParseSchema(r *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaString, r, graphql.MaxDepth(maxQueryDepth))
}

// Handler returns the relay HTTP handler for the schema.
func Handler(r *Resolver) (http.Handler, error) {
	schema, err := ParseSchema(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse graphql schema: %w", err)
	}
	return &relay.Handler{Schema: schema}, nil
}

func parseID(id graphql.ID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", id)
	}
	return n, nil
}

func optionalID(id *graphql.ID) (*int64, error) {
	if id == nil {
		return nil, nil
	}
	n, err := parseID(*id)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func toID(id int64) graphql.ID {
	return graphql.ID(strconv.FormatInt(id, 10))
}

// account loads an account through the account cache.
func (r *Resolver) account(ctx context.Context, id int64) (*accountResolver, error) {
	if a, ok := r.cache.Account(id); ok {
		return &accountResolver{root: r, a: *a}, nil
	}
	a, err := db.GetAccount(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	r.cache.SetAccount(a)
	return &accountResolver{root: r, a: *a}, nil
}

// retailer loads a retailer through the retailer cache.
func (r *Resolver) retailer(ctx context.Context, id int64) (*retailerResolver, error) {
	if rt, ok := r.cache.Retailer(id); ok {
		return &retailerResolver{r: *rt}, nil
	}
	rt, err := db.GetRetailer(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	r.cache.SetRetailer(rt)
	return &retailerResolver{r: *rt}, nil
}

func (r *Resolver) transaction(ctx context.Context, id *int64) (*transactionResolver, error) {
	if id == nil {
		return nil, nil
	}
	t, err := db.GetTransaction(ctx, r.pool, *id)
	if err != nil {
		return nil, err
	}
	return &transactionResolver{root: r, t: *t}, nil
}
