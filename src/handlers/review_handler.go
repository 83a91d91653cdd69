package handlers

import (
	"net/http"

	db "money-server/src/db/sql"
)

func unreviewedFilter() db.TransactionFilter {
	reviewed := false
	f := db.TransactionFilter{}
	f.Reviewed = &reviewed
	return f
}

// unlinkedInternalFilter selects internal transfers still waiting for their
// other half.
func unlinkedInternalFilter() db.TransactionFilter {
	internal := true
	f := db.TransactionFilter{Unlinked: true}
	f.IsInternal = &internal
	return f
}

func missingDetailFilter() db.TransactionFilter {
	requires := true
	f := db.TransactionFilter{MissingDetail: true}
	f.RequiresDetail = &requires
	return f
}

func reviewList(env *Env, f db.TransactionFilter, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryPage(r)
		if err != nil {
			writeError(w, r, err, action)
			return
		}
		txns, total, err := db.ListTransactions(r.Context(), env.Pool, f, page)
		if err != nil {
			writeError(w, r, err, action)
			return
		}
		writeJSON(w, http.StatusOK, paged(txns, total, page))
	}
}

func UnreviewedTransactions(env *Env) http.HandlerFunc {
	return reviewList(env, unreviewedFilter(), "list unreviewed transactions")
}

func UnlinkedInternalTransactions(env *Env) http.HandlerFunc {
	return reviewList(env, unlinkedInternalFilter(), "list unlinked internal transactions")
}

func MissingDetailTransactions(env *Env) http.HandlerFunc {
	return reviewList(env, missingDetailFilter(), "list transactions missing detail")
}
