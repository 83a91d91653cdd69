package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	store "money-server/src/db"
	db "money-server/src/db/sql"
	"money-server/src/importer"
	"money-server/src/logger"
	"money-server/src/models"
)

const maxStatementSize = 10 << 20

func ListImportProfiles(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, env.Profiles.Names())
	}
}

// ImportStatement reads a multipart upload with fields account_id, profile
// and file, and loads every row into the account as one batch.
func ImportStatement(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxStatementSize)
		if err := r.ParseMultipartForm(maxStatementSize); err != nil {
			writeError(w, r, invalid("invalid upload: %v", err), "import statement")
			return
		}
		accountID, err := strconv.ParseInt(r.FormValue("account_id"), 10, 64)
		if err != nil || accountID <= 0 {
			writeError(w, r, invalid("invalid account_id %q", r.FormValue("account_id")), "import statement")
			return
		}
		profile := r.FormValue("profile")
		if _, err := env.Profiles.Get(profile); err != nil {
			writeError(w, r, invalid("%v", err), "import statement")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, invalid("file is required"), "import statement")
			return
		}
		defer file.Close()

		res, err := importer.Import(r.Context(), env.Pool, env.Profiles, accountID, profile, header.Filename, file)
		var parseErrs importer.ParseErrors
		switch {
		case errors.As(err, &parseErrs), errors.Is(err, importer.ErrEmpty):
			writeError(w, r, invalid("%v", err), "import statement")
			return
		case err != nil:
			writeError(w, r, err, "import statement")
			return
		}
		env.ledgerChanged()
		writeJSON(w, http.StatusCreated, res)
	}
}

func ListImportBatches(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batches, err := db.ListImportBatches(r.Context(), env.Pool)
		if err != nil {
			writeError(w, r, err, "list imports")
			return
		}
		if batches == nil {
			batches = []models.ImportBatch{}
		}
		writeJSON(w, http.StatusOK, batches)
	}
}

// DeleteImportBatch undoes an import: its transactions are removed and the
// account is recalculated.
func DeleteImportBatch(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "batch_id")
		if id == "" {
			writeError(w, r, invalid("batch id is required"), "delete import")
			return
		}
		ctx := r.Context()
		err := store.WithTx(ctx, env.Pool, func(tx pgx.Tx) error {
			accountID, err := db.DeleteImportBatch(ctx, tx, id)
			if err != nil {
				return err
			}
			return db.Recalculate(ctx, tx, accountID)
		})
		if err != nil {
			writeError(w, r, err, "delete import")
			return
		}
		logger.Log.Info().Str("batch", id).Msg("Deleted import batch")
		env.ledgerChanged()
		writeMessage(w, "import deleted")
	}
}
