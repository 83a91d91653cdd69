package graph

import (
	"context"
	"errors"
	"fmt"

	graphql "github.com/graph-gophers/graphql-go"

	store "money-server/src/db"
	db "money-server/src/db/sql"
	"money-server/src/ledger"
	"money-server/src/logger"
	"money-server/src/models"
)

type accountInput struct {
	BankID   graphql.ID
	Name     string
	Alias    *string
	Type     string
	Currency string
	IsActive *bool
}

func (r *Resolver) CreateAccount(ctx context.Context, args struct{ Input accountInput }) (*accountResolver, error) {
	in := args.Input
	bankID, err := parseID(in.BankID)
	if err != nil {
		return nil, err
	}
	a := models.Account{
		BankID:   bankID,
		Name:     in.Name,
		Alias:    in.Alias,
		Type:     models.AccountType(in.Type),
		Currency: models.Currency(in.Currency),
		IsActive: in.IsActive == nil || *in.IsActive,
	}
	if a.Name == "" {
		return nil, errors.New("account name is required")
	}
	created, err := db.CreateAccount(ctx, r.pool, a)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate(store.AccountCache, store.DashboardCache)
	return &accountResolver{root: r, a: *created}, nil
}

type transactionInput struct {
	AccountID      graphql.ID
	RetailerID     *graphql.ID
	Amount         Decimal
	Date           Date
	Note           *string
	Type           *string
	IsInternal     *bool
	RequiresDetail *bool
	Reviewed       *bool
}

// toTransaction builds the transaction to store. Without a type the
// retailer's category is used, and itemized categories require detail
// unless told otherwise.
func (in transactionInput) toTransaction(retailerCategory func(int64) (models.TransactionCategory, error)) (models.Transaction, error) {
	accountID, err := parseID(in.AccountID)
	if err != nil {
		return models.Transaction{}, err
	}
	retailerID, err := optionalID(in.RetailerID)
	if err != nil {
		return models.Transaction{}, err
	}
	t := models.Transaction{
		AccountID:  accountID,
		RetailerID: retailerID,
		Amount:     in.Amount.Decimal,
		Date:       in.Date.Time,
		Note:       in.Note,
		Type:       models.CategoryEtc,
		IsInternal: in.IsInternal != nil && *in.IsInternal,
		Reviewed:   in.Reviewed != nil && *in.Reviewed,
	}
	if in.Type != nil {
		t.Type = models.TransactionCategory(*in.Type)
	} else if retailerID != nil {
		if t.Type, err = retailerCategory(*retailerID); err != nil {
			return t, err
		}
	}
	if !t.Type.Valid() {
		return t, fmt.Errorf("invalid category %q", t.Type)
	}
	if in.RequiresDetail != nil {
		t.RequiresDetail = *in.RequiresDetail
	} else {
		t.RequiresDetail = t.Type.RequiresDetail()
	}
	return t, nil
}

func (r *Resolver) CreateTransaction(ctx context.Context, args struct{ Input transactionInput }) (*transactionResolver, error) {
	t, err := args.Input.toTransaction(func(id int64) (models.TransactionCategory, error) {
		rt, err := r.retailer(ctx, id)
		if err != nil {
			return "", err
		}
		return rt.r.Category, nil
	})
	if err != nil {
		return nil, err
	}
	created, err := db.AddTransaction(ctx, r.pool, t)
	if err != nil {
		return nil, err
	}
	r.ledgerChanged()
	return &transactionResolver{root: r, t: *created}, nil
}

// ledgerChanged drops the cached balances a ledger write makes stale.
func (r *Resolver) ledgerChanged() {
	r.cache.Invalidate(store.AccountCache, store.DashboardCache)
}

type retailerInput struct {
	Name     string
	Type     string
	Category string
}

func (r *Resolver) CreateRetailer(ctx context.Context, args struct{ Input retailerInput }) (*retailerResolver, error) {
	if args.Input.Name == "" {
		return nil, errors.New("retailer name is required")
	}
	created, err := db.CreateRetailer(ctx, r.pool, models.Retailer{
		Name:     args.Input.Name,
		Type:     models.RetailerType(args.Input.Type),
		Category: models.TransactionCategory(args.Input.Category),
	})
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate(store.RetailerCache)
	return &retailerResolver{r: *created}, nil
}

type stockInput struct {
	Name     string
	Ticker   *string
	Currency string
}

func (r *Resolver) CreateStock(ctx context.Context, args struct{ Input stockInput }) (*stockResolver, error) {
	created, err := db.CreateStock(ctx, r.pool, models.Stock{
		Name:     args.Input.Name,
		Ticker:   args.Input.Ticker,
		Currency: models.Currency(args.Input.Currency),
	})
	if err != nil {
		return nil, err
	}
	return &stockResolver{s: *created}, nil
}

type stockTransactionInput struct {
	AccountID            graphql.ID
	StockID              graphql.ID
	Date                 Date
	Price                Decimal
	Shares               Decimal
	Amount               Decimal
	RelatedTransactionID *graphql.ID
	Note                 *string
}

// toStockTransaction builds the trade to store. A zero amount is derived
// from price and shares.
func (in stockTransactionInput) toStockTransaction() (models.StockTransaction, error) {
	accountID, err := parseID(in.AccountID)
	if err != nil {
		return models.StockTransaction{}, err
	}
	stockID, err := parseID(in.StockID)
	if err != nil {
		return models.StockTransaction{}, err
	}
	relatedID, err := optionalID(in.RelatedTransactionID)
	if err != nil {
		return models.StockTransaction{}, err
	}
	if in.Shares.IsZero() {
		return models.StockTransaction{}, errors.New("shares must not be zero")
	}
	st := models.StockTransaction{
		Date:                 in.Date.Time,
		AccountID:            accountID,
		StockID:              stockID,
		RelatedTransactionID: relatedID,
		Price:                in.Price.Decimal,
		Shares:               in.Shares.Decimal,
		Amount:               in.Amount.Decimal,
	}
	if st.Amount.IsZero() {
		st.Amount = ledger.TradeAmount(st.Price, st.Shares)
	}
	if in.Note != nil {
		st.Note = *in.Note
	}
	return st, nil
}

func (r *Resolver) CreateStockTransaction(ctx context.Context, args struct{ Input stockTransactionInput }) (*stockTransactionResolver, error) {
	st, err := args.Input.toStockTransaction()
	if err != nil {
		return nil, err
	}
	created, err := db.AddStockTransaction(ctx, r.pool, st)
	if err != nil {
		return nil, err
	}
	r.ledgerChanged()
	return &stockTransactionResolver{root: r, st: *created}, nil
}

type amazonOrderInput struct {
	Date                Date
	Item                string
	IsReturned          *bool
	TransactionID       *graphql.ID
	ReturnTransactionID *graphql.ID
}

func (r *Resolver) CreateAmazonOrder(ctx context.Context, args struct{ Input amazonOrderInput }) (*amazonOrderResolver, error) {
	in := args.Input
	txnID, err := optionalID(in.TransactionID)
	if err != nil {
		return nil, err
	}
	returnID, err := optionalID(in.ReturnTransactionID)
	if err != nil {
		return nil, err
	}
	created, err := db.CreateAmazonOrder(ctx, r.pool, models.AmazonOrder{
		Date:                in.Date.Time,
		Item:                in.Item,
		IsReturned:          in.IsReturned != nil && *in.IsReturned,
		TransactionID:       txnID,
		ReturnTransactionID: returnID,
	})
	if err != nil {
		return nil, err
	}
	return &amazonOrderResolver{root: r, o: *created}, nil
}

func (r *Resolver) RecalculateBalance(ctx context.Context, args struct{ AccountID graphql.ID }) (*accountResolver, error) {
	id, err := parseID(args.AccountID)
	if err != nil {
		return nil, err
	}
	a, err := db.RecalculateAccountBalance(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	r.ledgerChanged()
	logger.Log.Info().Int64("account_id", id).Str("amount", a.Amount.String()).Msg("recalculated balance")
	return &accountResolver{root: r, a: *a}, nil
}

func (r *Resolver) LinkTransactions(ctx context.Context, args struct {
	SourceID graphql.ID
	TargetID graphql.ID
}) (*linkResultResolver, error) {
	sourceID, err := parseID(args.SourceID)
	if err != nil {
		return nil, err
	}
	targetID, err := parseID(args.TargetID)
	if err != nil {
		return nil, err
	}
	ex, err := db.LinkTransactions(ctx, r.pool, sourceID, targetID, r.bounds)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate(store.DashboardCache)

	res := &linkResultResolver{}
	if res.source, err = r.transaction(ctx, &sourceID); err != nil {
		return nil, err
	}
	if res.target, err = r.transaction(ctx, &targetID); err != nil {
		return nil, err
	}
	if ex != nil {
		res.exchange = &exchangeResolver{e: *ex}
	}
	return res, nil
}

func (r *Resolver) ToggleReviewed(ctx context.Context, args struct{ ID graphql.ID }) (*transactionResolver, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	if _, err := db.ToggleReviewed(ctx, r.pool, id); err != nil {
		return nil, err
	}
	r.cache.Invalidate(store.DashboardCache)
	return r.transaction(ctx, &id)
}
