package handlers

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	store "money-server/src/db"
	db "money-server/src/db/sql"
	"money-server/src/logger"
	"money-server/src/middleware"
	"money-server/src/models"
	"money-server/src/util"
)

func Register(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !env.Config.AllowRegistration {
			logger.Log.Warn().Msg("Registration attempted while disabled")
			http.Error(w, "registration is disabled", http.StatusForbidden)
			return
		}

		var req models.RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "register")
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		req.Username = strings.ToLower(strings.TrimSpace(req.Username))

		if !util.ValidateEmail(req.Email) {
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}
		if !util.ValidateUsername(req.Username) {
			http.Error(w, "username must be 3 to 30 letters, digits, dots, dashes or underscores", http.StatusBadRequest)
			return
		}
		if !util.ValidatePassword(req.Password) {
			http.Error(w, "password must be at least 8 characters with uppercase, lowercase, digit, and special character", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, r, err, "hash password")
			return
		}

		user, err := db.CreateUser(r.Context(), env.Pool, req, hashedPassword)
		if err != nil {
			if errors.Is(err, db.ErrUserExists) {
				logger.Log.Warn().Str("username", req.Username).Msg("Registration failed - email or username already exists")
				http.Error(w, "email or username already exists", http.StatusConflict)
				return
			}
			writeError(w, r, err, "create user")
			return
		}

		logger.Log.Info().Str("username", user.Username).Int64("user_id", user.ID).Msg("Successful registration")

		token, err := middleware.IssueToken(env.Config.JWTSecret, env.Config.TokenTTL, *user)
		if err != nil {
			writeError(w, r, err, "generate token")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"token": token})
	}
}

func Login(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &credentials); err != nil {
			writeError(w, r, err, "login")
			return
		}

		user, err := db.GetUserByUsername(r.Context(), env.Pool, strings.ToLower(strings.TrimSpace(credentials.Username)))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				logger.Log.Warn().Str("username", credentials.Username).Msg("Login for unknown user")
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			writeError(w, r, err, "find user")
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(credentials.Password)); err != nil {
			logger.Log.Warn().Str("username", credentials.Username).Str("remote", r.RemoteAddr).Msg("Invalid password attempt")
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := middleware.IssueToken(env.Config.JWTSecret, env.Config.TokenTTL, *user)
		if err != nil {
			writeError(w, r, err, "generate token")
			return
		}

		if err := db.UpdateUserLastLogin(r.Context(), env.Pool, user.ID); err != nil {
			logger.Log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to update last_login")
		}

		logger.Log.Info().Str("username", user.Username).Int64("user_id", user.ID).Msg("Successful login")
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}
