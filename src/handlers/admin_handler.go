package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"money-server/src/logger"
)

// ClearCache drops one named cache group.
func ClearCache(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "cache_name")
		if err := env.Cache.ClearGroup(name); err != nil {
			writeError(w, r, invalid("%v", err), "clear cache")
			return
		}
		logger.Log.Info().Str("cache", name).Msg("Cleared cache")
		writeMessage(w, "cache cleared: "+name)
	}
}
