package db

import (
	"strconv"
	"strings"
)

// where builds a WHERE clause with numbered placeholders. Conditions use ?
// for their single argument.
type where struct {
	conds []string
	args  []any
}

func newWhere(args ...any) *where {
	return &where{args: args}
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1))
}

// raw adds a condition without arguments.
func (w *where) raw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// next is the placeholder for the argument after the current ones.
func (w *where) next(arg any) string {
	w.args = append(w.args, arg)
	return "$" + strconv.Itoa(len(w.args))
}
