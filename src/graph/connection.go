package graph

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	store "money-server/src/db"
)

const cursorPrefix = "offset:"

var errBadCursor = errors.New("invalid cursor")

// Cursors are opaque base64 offsets into the ordered result.
func encodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

func decodeCursor(cursor string) (int, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, errBadCursor
	}
	s, ok := strings.CutPrefix(string(raw), cursorPrefix)
	if !ok {
		return 0, errBadCursor
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errBadCursor
	}
	return n, nil
}

// pageOf turns relay forward pagination arguments into a page window.
func pageOf(first *int32, after *string) (store.Page, error) {
	var p store.Page
	if first != nil {
		if *first < 0 {
			return p, fmt.Errorf("first must not be negative, got %d", *first)
		}
		p.Limit = int(*first)
	}
	if after != nil && *after != "" {
		n, err := decodeCursor(*after)
		if err != nil {
			return p, err
		}
		p.Offset = n + 1
	}
	return p.Normalize(), nil
}

// window slices an in-memory list the way a LIMIT/OFFSET query would.
func window[T any](items []T, p store.Page) []T {
	if p.Offset >= len(items) {
		return nil
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}

type edge[T any] struct {
	cursor string
	node   T
}

func (e *edge[T]) Cursor() string { return e.cursor }
func (e *edge[T]) Node() T        { return e.node }

type pageInfo struct {
	hasNext, hasPrev bool
	start, end       *string
}

func (p *pageInfo) HasNextPage() bool     { return p.hasNext }
func (p *pageInfo) HasPreviousPage() bool { return p.hasPrev }
func (p *pageInfo) StartCursor() *string  { return p.start }
func (p *pageInfo) EndCursor() *string    { return p.end }

type connection[T any] struct {
	edges []*edge[T]
	info  *pageInfo
	total int
}

func newConnection[T any](nodes []T, p store.Page, total int) *connection[T] {
	c := &connection[T]{
		edges: make([]*edge[T], len(nodes)),
		info:  &pageInfo{hasPrev: p.Offset > 0},
		total: total,
	}
	for i, n := range nodes {
		c.edges[i] = &edge[T]{cursor: encodeCursor(p.Offset + i), node: n}
	}
	if len(c.edges) > 0 {
		c.info.start = &c.edges[0].cursor
		c.info.end = &c.edges[len(c.edges)-1].cursor
	}
	c.info.hasNext = p.Offset+len(nodes) < total
	return c
}

func (c *connection[T]) Edges() []*edge[T]   { return c.edges }
func (c *connection[T]) PageInfo() *pageInfo { return c.info }
func (c *connection[T]) TotalCount() int32   { return int32(c.total) }
