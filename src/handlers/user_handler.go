package handlers

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	db "money-server/src/db/sql"
	"money-server/src/logger"
	"money-server/src/middleware"
	"money-server/src/util"
)

func GetCurrentUser(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := db.GetUserByID(r.Context(), env.Pool, middleware.UserID(r.Context()))
		if err != nil {
			writeError(w, r, err, "get user")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func ChangePassword(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "change password")
			return
		}

		user, err := db.GetUserByID(r.Context(), env.Pool, userID)
		if err != nil {
			writeError(w, r, err, "get user")
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.CurrentPassword)); err != nil {
			logger.Log.Warn().Int64("user_id", userID).Msg("Invalid current password attempt")
			http.Error(w, "current password is incorrect", http.StatusUnauthorized)
			return
		}

		if !util.ValidatePassword(req.NewPassword) {
			http.Error(w, "password must be at least 8 characters with uppercase, lowercase, digit, and special character", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, r, err, "hash password")
			return
		}

		if err := db.UpdateUserPassword(r.Context(), env.Pool, userID, hashedPassword); err != nil {
			writeError(w, r, err, "update password")
			return
		}

		logger.Log.Info().Int64("user_id", userID).Msg("User password changed")
		writeMessage(w, "password changed successfully")
	}
}

func DeleteUser(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		// Only allow a user to delete themselves
		var req struct {
			UserID int64 `json:"user_id"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "delete user")
			return
		}
		if req.UserID != userID {
			logger.Log.Warn().Int64("user_id", userID).Int64("requested", req.UserID).Msg("Forbidden delete attempt")
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		if err := db.DeleteUser(r.Context(), env.Pool, userID); err != nil {
			writeError(w, r, err, "delete user")
			return
		}

		logger.Log.Info().Int64("user_id", userID).Msg("User deleted")
		writeJSON(w, http.StatusOK, map[string]string{
			"message":  "user deleted",
			"redirect": "/register",
		})
	}
}
