package graph

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	store "money-server/src/db"
	"money-server/src/ledger"
)

func testResolver() *Resolver {
	return NewResolver(nil, nil, ledger.NewRatioBounds(1000, 1600))
}

func TestSchemaParses(t *testing.T) {
	_, err := ParseSchema(testResolver())
	require.NoError(t, err)

	h, err := Handler(testResolver())
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestQueryValidation(t *testing.T) {
	schema, err := ParseSchema(testResolver())
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
	}{
		{"unknown field", `{ transactions { edges { node { nonsense } } } }`},
		{"missing id", `{ account { id } }`},
		{"bad enum", `{ amountSnapshots(currency: EUR) { totalCount } }`},
		{"bad id", `{ account(id: "abc") { id } }`},
		{"bad cursor", `{ transactions(after: "not-a-cursor") { totalCount } }`},
		{"negative first", `{ transactions(first: -1) { totalCount } }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := schema.Exec(context.Background(), tt.query, "", nil)
			assert.NotEmpty(t, resp.Errors)
		})
	}
}

func TestCursorRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 24, 1000} {
		got, err := decodeCursor(encodeCursor(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	_, err := decodeCursor("b2Zmc2V0Oi0x") // offset:-1
	assert.ErrorIs(t, err, errBadCursor)
	_, err = decodeCursor("Zm9vOjE=") // foo:1
	assert.ErrorIs(t, err, errBadCursor)
}

func TestPageOf(t *testing.T) {
	p, err := pageOf(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, store.Page{Limit: store.DefaultPageSize}, p)

	first := int32(10)
	after := encodeCursor(9)
	p, err = pageOf(&first, &after)
	require.NoError(t, err)
	assert.Equal(t, store.Page{Limit: 10, Offset: 10}, p)
}

func TestConnectionPageInfo(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	page := store.Page{Limit: 2, Offset: 2}
	c := newConnection(window(items, page), page, len(items))
	require.Len(t, c.Edges(), 2)
	assert.Equal(t, "c", c.Edges()[0].Node())
	assert.Equal(t, int32(5), c.TotalCount())
	assert.True(t, c.PageInfo().HasNextPage())
	assert.True(t, c.PageInfo().HasPreviousPage())

	off, err := decodeCursor(*c.PageInfo().EndCursor())
	require.NoError(t, err)
	assert.Equal(t, 3, off)

	page = store.Page{Limit: 2, Offset: 4}
	c = newConnection(window(items, page), page, len(items))
	require.Len(t, c.Edges(), 1)
	assert.False(t, c.PageInfo().HasNextPage())

	page = store.Page{Limit: 2, Offset: 10}
	c = newConnection(window(items, page), page, len(items))
	assert.Empty(t, c.Edges())
	assert.Nil(t, c.PageInfo().StartCursor())
}

func TestDecimalScalar(t *testing.T) {
	tests := []struct {
		input interface{}
		want  string
	}{
		{"1234.50", "1234.5"},
		{int32(-42), "-42"},
		{float64(0.25), "0.25"},
	}
	for _, tt := range tests {
		var d Decimal
		require.NoError(t, d.UnmarshalGraphQL(tt.input))
		assert.Equal(t, tt.want, d.String())
	}

	var d Decimal
	assert.Error(t, d.UnmarshalGraphQL(true))
	assert.Error(t, d.UnmarshalGraphQL("12,000"))

	out, err := json.Marshal(newDecimal(d.Decimal.Add(d.Decimal)))
	require.NoError(t, err)
	assert.Equal(t, `"0"`, string(out))
}

func TestDateScalar(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalGraphQL("2024-02-29"))
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-29"`, string(out))

	assert.Error(t, d.UnmarshalGraphQL("2024/02/29"))
	assert.Error(t, d.UnmarshalGraphQL(20240229))
}
