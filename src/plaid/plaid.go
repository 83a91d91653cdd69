// Package plaid connects bank logins through Plaid and syncs their
// transactions into linked accounts.
package plaid

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/shopspring/decimal"

	"money-server/src/db"
	dbsql "money-server/src/db/sql"
	"money-server/src/logger"
	"money-server/src/models"
)

func NewPlaidClient(clientID, secret, env string) (*plaid.APIClient, error) {
	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	configuration.AddDefaultHeader("PLAID-SECRET", secret)

	switch env {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	default:
		return nil, fmt.Errorf("invalid Plaid environment: %s", env)
	}

	return plaid.NewAPIClient(configuration), nil
}

// CreateLinkToken starts a Plaid Link session for the transactions product.
func CreateLinkToken(ctx context.Context, client *plaid.APIClient, userID int64, webhookURL string) (string, error) {
	user := plaid.LinkTokenCreateRequestUser{ClientUserId: strconv.FormatInt(userID, 10)}
	request := plaid.NewLinkTokenCreateRequest(
		"Money",
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
	)
	request.SetUser(user)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})
	if webhookURL != "" {
		request.SetWebhook(webhookURL)
	}
	resp, _, err := client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", fmt.Errorf("failed to create link token: %w", err)
	}
	return resp.GetLinkToken(), nil
}

// ExchangePublicToken trades the Link public token for an access token and
// stores the item with its institution.
func ExchangePublicToken(ctx context.Context, client *plaid.APIClient, q db.Querier, publicToken string) (*models.PlaidItem, error) {
	exchangeReq := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	exchangeResp, _, err := client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*exchangeReq).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to exchange public token: %w", err)
	}
	item := models.PlaidItem{
		ItemID:      exchangeResp.GetItemId(),
		AccessToken: exchangeResp.GetAccessToken(),
	}

	// Institution details are optional.
	itemReq := plaid.NewItemGetRequest(item.AccessToken)
	itemResp, _, err := client.PlaidApi.ItemGet(ctx).ItemGetRequest(*itemReq).Execute()
	if err != nil {
		logger.Log.Warn().Err(err).Str("item", item.ItemID).Msg("Failed to fetch Plaid item details")
	} else {
		details := itemResp.GetItem()
		if details.InstitutionId.IsSet() && details.InstitutionId.Get() != nil {
			item.InstitutionID = *details.InstitutionId.Get()
		}
		if name, ok := details.AdditionalProperties["institution_name"].(string); ok {
			item.InstitutionName = name
		}
	}
	return dbsql.SavePlaidItem(ctx, q, item)
}

// SyncResult counts what one sync changed.
type SyncResult struct {
	Added    int     `json:"added"`
	Modified int     `json:"modified"`
	Removed  int     `json:"removed"`
	Skipped  int     `json:"skipped"`
	Accounts []int64 `json:"accounts"`
}

// ToTransaction maps a Plaid transaction to a ledger row of account.
// Plaid reports outflows as positive amounts, the ledger the opposite.
func ToTransaction(t plaid.Transaction, accountID int64) (models.Transaction, error) {
	date, err := time.Parse("2006-01-02", t.GetDate())
	if err != nil {
		return models.Transaction{}, fmt.Errorf("transaction %s: invalid date %q", t.GetTransactionId(), t.GetDate())
	}
	note := t.GetName()
	if m := t.GetMerchantName(); m != "" {
		note = m
	}
	externalID := t.GetTransactionId()
	return models.Transaction{
		AccountID:  accountID,
		Amount:     decimal.NewFromFloat(t.GetAmount()).Neg(),
		Date:       date,
		Note:       &note,
		Type:       models.CategoryEtc,
		ExternalID: &externalID,
	}, nil
}

// SyncItem pulls /transactions/sync pages for the item until Plaid has no
// more, writes them into the accounts linked by plaid_account_id, saves the
// cursor and recalculates the touched accounts, all in one transaction.
// Pending transactions and those of unlinked accounts are skipped.
func SyncItem(ctx context.Context, client *plaid.APIClient, pool *pgxpool.Pool, item models.PlaidItem) (SyncResult, error) {
	var (
		added, modified []plaid.Transaction
		removed         []string
		cursor          = item.SyncCursor
	)
	for {
		request := plaid.NewTransactionsSyncRequest(item.AccessToken)
		if cursor != "" {
			request.SetCursor(cursor)
		}
		resp, _, err := client.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(*request).Execute()
		if err != nil {
			return SyncResult{}, fmt.Errorf("failed to sync item %s: %w", item.ItemID, err)
		}
		added = append(added, resp.GetAdded()...)
		modified = append(modified, resp.GetModified()...)
		for _, r := range resp.GetRemoved() {
			removed = append(removed, r.GetTransactionId())
		}
		cursor = resp.GetNextCursor()
		if !resp.GetHasMore() {
			break
		}
	}

	var res SyncResult
	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		touched := make(map[int64]struct{})
		accounts := make(map[string]int64)

		accountFor := func(plaidAccountID string) (int64, bool, error) {
			if id, ok := accounts[plaidAccountID]; ok {
				return id, id != 0, nil
			}
			a, err := dbsql.GetAccountByPlaidID(ctx, tx, plaidAccountID)
			if errors.Is(err, db.ErrNotFound) {
				accounts[plaidAccountID] = 0
				return 0, false, nil
			}
			if err != nil {
				return 0, false, err
			}
			accounts[plaidAccountID] = a.ID
			return a.ID, true, nil
		}

		upsert := func(list []plaid.Transaction, counter *int) error {
			for _, pt := range list {
				if pt.GetPending() {
					res.Skipped++
					continue
				}
				accountID, ok, err := accountFor(pt.GetAccountId())
				if err != nil {
					return err
				}
				if !ok {
					res.Skipped++
					continue
				}
				t, err := ToTransaction(pt, accountID)
				if err != nil {
					return err
				}
				if err := dbsql.UpsertExternalTransaction(ctx, tx, t); err != nil {
					return err
				}
				touched[accountID] = struct{}{}
				*counter++
			}
			return nil
		}
		if err := upsert(added, &res.Added); err != nil {
			return err
		}
		if err := upsert(modified, &res.Modified); err != nil {
			return err
		}

		ids, err := dbsql.DeleteByExternalIDs(ctx, tx, removed)
		if err != nil {
			return err
		}
		res.Removed = len(ids)
		for _, id := range ids {
			touched[id] = struct{}{}
		}

		if err := dbsql.UpdateSyncCursor(ctx, tx, item.ID, cursor); err != nil {
			return err
		}
		for id := range touched {
			if err := dbsql.Recalculate(ctx, tx, id); err != nil {
				return err
			}
			res.Accounts = append(res.Accounts, id)
		}
		return nil
	})
	if err != nil {
		return SyncResult{}, err
	}

	logger.Log.Info().
		Str("item", item.ItemID).
		Int("added", res.Added).
		Int("modified", res.Modified).
		Int("removed", res.Removed).
		Int("skipped", res.Skipped).
		Msg("Plaid sync finished")
	return res, nil
}

// SyncAll syncs every stored item and stops at the first failure.
func SyncAll(ctx context.Context, client *plaid.APIClient, pool *pgxpool.Pool) (SyncResult, error) {
	items, err := dbsql.GetPlaidItems(ctx, pool)
	if err != nil {
		return SyncResult{}, err
	}
	var total SyncResult
	for _, item := range items {
		res, err := SyncItem(ctx, client, pool, item)
		if err != nil {
			return total, err
		}
		total.Added += res.Added
		total.Modified += res.Modified
		total.Removed += res.Removed
		total.Skipped += res.Skipped
		total.Accounts = append(total.Accounts, res.Accounts...)
	}
	return total, nil
}
