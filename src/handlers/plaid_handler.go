package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/plaid/plaid-go/v41/plaid"

	db "money-server/src/db/sql"
	"money-server/src/logger"
	"money-server/src/middleware"
	"money-server/src/models"
	plaidsync "money-server/src/plaid"
	"money-server/src/util"
)

// plaidClient answers 503 when Plaid is not configured.
func plaidClient(env *Env, w http.ResponseWriter) (*plaid.APIClient, bool) {
	if env.Plaid == nil {
		http.Error(w, "plaid is not configured", http.StatusServiceUnavailable)
		return nil, false
	}
	return env.Plaid, true
}

func CreateLinkToken(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := plaidClient(env, w)
		if !ok {
			return
		}
		token, err := plaidsync.CreateLinkToken(r.Context(), client, middleware.UserID(r.Context()), env.Config.PlaidWebhookURL)
		if err != nil {
			writeError(w, r, err, "create link token")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"link_token": token})
	}
}

func ExchangePublicToken(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := plaidClient(env, w)
		if !ok {
			return
		}
		var req struct {
			PublicToken string `json:"public_token"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, "exchange public token")
			return
		}
		if req.PublicToken == "" {
			writeError(w, r, invalid("public_token is required"), "exchange public token")
			return
		}
		item, err := plaidsync.ExchangePublicToken(r.Context(), client, env.Pool, req.PublicToken)
		if err != nil {
			writeError(w, r, err, "exchange public token")
			return
		}
		logger.Log.Info().Str("item", item.ItemID).Str("institution", item.InstitutionName).Msg("Linked Plaid item")
		writeJSON(w, http.StatusCreated, item)
	}
}

func GetPlaidItems(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := db.GetPlaidItems(r.Context(), env.Pool)
		if err != nil {
			writeError(w, r, err, "get plaid items")
			return
		}
		if items == nil {
			items = []models.PlaidItem{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// GetPlaidAccounts lists the accounts Plaid reports for an item, so they can
// be linked through plaid_account_id.
func GetPlaidAccounts(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := plaidClient(env, w)
		if !ok {
			return
		}
		id, err := pathID(r, "item_id")
		if err != nil {
			writeError(w, r, err, "get plaid accounts")
			return
		}
		item, err := db.GetPlaidItem(r.Context(), env.Pool, id)
		if err != nil {
			writeError(w, r, err, "get plaid accounts")
			return
		}
		request := plaid.NewAccountsGetRequest(item.AccessToken)
		resp, _, err := client.PlaidApi.AccountsGet(r.Context()).AccountsGetRequest(*request).Execute()
		if err != nil {
			writeError(w, r, err, "get plaid accounts")
			return
		}
		writeJSON(w, http.StatusOK, resp.GetAccounts())
	}
}

func SyncPlaidItem(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := plaidClient(env, w)
		if !ok {
			return
		}
		id, err := pathID(r, "item_id")
		if err != nil {
			writeError(w, r, err, "sync plaid item")
			return
		}
		item, err := db.GetPlaidItem(r.Context(), env.Pool, id)
		if err != nil {
			writeError(w, r, err, "sync plaid item")
			return
		}
		res, err := plaidsync.SyncItem(r.Context(), client, env.Pool, *item)
		if err != nil {
			writeError(w, r, err, "sync plaid item")
			return
		}
		env.ledgerChanged()
		writeJSON(w, http.StatusOK, res)
	}
}

func DeletePlaidItem(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "item_id")
		if err != nil {
			writeError(w, r, err, "delete plaid item")
			return
		}
		item, err := db.GetPlaidItem(r.Context(), env.Pool, id)
		if err != nil {
			writeError(w, r, err, "delete plaid item")
			return
		}
		if env.Plaid != nil {
			req := plaid.NewItemRemoveRequest(item.AccessToken)
			if _, _, err := env.Plaid.PlaidApi.ItemRemove(r.Context()).ItemRemoveRequest(*req).Execute(); err != nil {
				logger.Log.Warn().Err(err).Str("item", item.ItemID).Msg("Failed to remove item at Plaid")
			}
		}
		if err := db.DeletePlaidItem(r.Context(), env.Pool, id); err != nil {
			writeError(w, r, err, "delete plaid item")
			return
		}
		writeMessage(w, "plaid item deleted")
	}
}

type webhookPayload struct {
	WebhookType string `json:"webhook_type"`
	WebhookCode string `json:"webhook_code"`
	ItemID      string `json:"item_id"`
}

// PlaidWebhook verifies the request signature and syncs the item when Plaid
// reports new transactions. The sync runs after the response so Plaid is
// answered quickly.
func PlaidWebhook(env *Env, verifier *util.WebhookVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, ok := plaidClient(env, w)
		if !ok {
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			writeError(w, r, invalid("unreadable body"), "handle plaid webhook")
			return
		}
		if err := verifier.Verify(r.Context(), body, r.Header); err != nil {
			logger.Log.Warn().Err(err).Msg("Rejected Plaid webhook")
			http.Error(w, "invalid webhook signature", http.StatusUnauthorized)
			return
		}
		var payload webhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			writeError(w, r, invalid("invalid webhook body: %v", err), "handle plaid webhook")
			return
		}
		logger.Log.Info().
			Str("type", payload.WebhookType).
			Str("code", payload.WebhookCode).
			Str("item", payload.ItemID).
			Msg("Plaid webhook received")

		if payload.WebhookType == "TRANSACTIONS" && payload.WebhookCode == "SYNC_UPDATES_AVAILABLE" {
			item, err := db.GetPlaidItemByItemID(r.Context(), env.Pool, payload.ItemID)
			if err != nil {
				writeError(w, r, err, "handle plaid webhook")
				return
			}
			go func(item models.PlaidItem) {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()
				if _, err := plaidsync.SyncItem(ctx, client, env.Pool, item); err != nil {
					logger.Log.Error().Err(err).Str("item", item.ItemID).Msg("Webhook sync failed")
					return
				}
				env.ledgerChanged()
			}(*item)
		}
		writeMessage(w, "ok")
	}
}
