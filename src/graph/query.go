package graph

import (
	"context"
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	db "money-server/src/db/sql"
	"money-server/src/models"
)

func (r *Resolver) transactionConnection(ctx context.Context, f db.TransactionFilter, first *int32, after *string) (*connection[*transactionResolver], error) {
	page, err := pageOf(first, after)
	if err != nil {
		return nil, err
	}
	txns, total, err := db.ListTransactions(ctx, r.pool, f, page)
	if err != nil {
		return nil, err
	}
	nodes := make([]*transactionResolver, len(txns))
	for i, t := range txns {
		nodes[i] = &transactionResolver{root: r, t: t}
	}
	return newConnection(nodes, page, total), nil
}

func (r *Resolver) Transactions(ctx context.Context, args struct {
	First     *int32
	After     *string
	AccountID *graphql.ID
	Reviewed  *bool
}) (*connection[*transactionResolver], error) {
	var f db.TransactionFilter
	accountID, err := optionalID(args.AccountID)
	if err != nil {
		return nil, err
	}
	f.AccountID = accountID
	f.Reviewed = args.Reviewed
	return r.transactionConnection(ctx, f, args.First, args.After)
}

func (r *Resolver) Retailers(ctx context.Context, args struct {
	First  *int32
	After  *string
	Search *string
}) (*connection[*retailerResolver], error) {
	page, err := pageOf(args.First, args.After)
	if err != nil {
		return nil, err
	}
	search := ""
	if args.Search != nil {
		search = *args.Search
	}
	retailers, total, err := db.ListRetailers(ctx, r.pool, search, page)
	if err != nil {
		return nil, err
	}
	nodes := make([]*retailerResolver, len(retailers))
	for i, rt := range retailers {
		nodes[i] = &retailerResolver{r: rt}
	}
	return newConnection(nodes, page, total), nil
}

func (r *Resolver) Banks(ctx context.Context, args struct {
	First *int32
	After *string
}) (*connection[*bankResolver], error) {
	page, err := pageOf(args.First, args.After)
	if err != nil {
		return nil, err
	}
	banks, total, err := db.ListBanks(ctx, r.pool, page)
	if err != nil {
		return nil, err
	}
	nodes := make([]*bankResolver, len(banks))
	for i, b := range banks {
		nodes[i] = &bankResolver{root: r, b: b.Bank}
	}
	return newConnection(nodes, page, total), nil
}

func (r *Resolver) Accounts(ctx context.Context, args struct {
	First    *int32
	After    *string
	IsActive *bool
}) (*connection[*accountResolver], error) {
	page, err := pageOf(args.First, args.After)
	if err != nil {
		return nil, err
	}
	accounts, total, err := db.ListAccounts(ctx, r.pool, db.AccountFilter{IsActive: args.IsActive}, page)
	if err != nil {
		return nil, err
	}
	nodes := make([]*accountResolver, len(accounts))
	for i, a := range accounts {
		nodes[i] = &accountResolver{root: r, a: a}
	}
	return newConnection(nodes, page, total), nil
}

func (r *Resolver) AmountSnapshots(ctx context.Context, args struct {
	First    *int32
	After    *string
	Currency *string
}) (*connection[*snapshotResolver], error) {
	page, err := pageOf(args.First, args.After)
	if err != nil {
		return nil, err
	}
	var currency models.Currency
	if args.Currency != nil {
		currency = models.Currency(*args.Currency)
	}
	snaps, err := db.ListSnapshots(ctx, r.pool, currency, time.Time{})
	if err != nil {
		return nil, err
	}
	rows := window(snaps, page)
	nodes := make([]*snapshotResolver, len(rows))
	for i, s := range rows {
		nodes[i] = &snapshotResolver{s: s}
	}
	return newConnection(nodes, page, len(snaps)), nil
}

func (r *Resolver) Salaries(ctx context.Context, args struct {
	First *int32
	After *string
	Year  *int32
}) (*connection[*salaryResolver], error) {
	page, err := pageOf(args.First, args.After)
	if err != nil {
		return nil, err
	}
	year := 0
	if args.Year != nil {
		year = int(*args.Year)
	}
	salaries, err := db.ListSalaries(ctx, r.pool, year)
	if err != nil {
		return nil, err
	}
	rows := window(salaries, page)
	nodes := make([]*salaryResolver, len(rows))
	for i, s := range rows {
		nodes[i] = &salaryResolver{root: r, s: s}
	}
	return newConnection(nodes, page, len(salaries)), nil
}

func (r *Resolver) Stocks(ctx context.Context, args struct {
	First *int32
	After *string
}) (*connection[*stockResolver], error) {
	page, err := pageOf(args.First, args.After)
	if err != nil {
		return nil, err
	}
	stocks, err := db.ListStocks(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	rows := window(stocks, page)
	nodes := make([]*stockResolver, len(rows))
	for i, s := range rows {
		nodes[i] = &stockResolver{s: s}
	}
	return newConnection(nodes, page, len(stocks)), nil
}

func (r *Resolver) AmazonOrders(ctx context.Context, args struct {
	First    *int32
	After    *string
	Unlinked *bool
}) (*connection[*amazonOrderResolver], error) {
	page, err := pageOf(args.First, args.After)
	if err != nil {
		return nil, err
	}
	unlinked := args.Unlinked != nil && *args.Unlinked
	orders, total, err := db.ListAmazonOrders(ctx, r.pool, unlinked, page)
	if err != nil {
		return nil, err
	}
	nodes := make([]*amazonOrderResolver, len(orders))
	for i, o := range orders {
		nodes[i] = &amazonOrderResolver{root: r, o: o}
	}
	return newConnection(nodes, page, total), nil
}

func (r *Resolver) SalaryYears(ctx context.Context) ([]int32, error) {
	years, err := db.SalaryYears(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(years))
	for i, y := range years {
		out[i] = int32(y)
	}
	return out, nil
}

func (r *Resolver) Account(ctx context.Context, args struct{ ID graphql.ID }) (*accountResolver, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	a, err := db.GetAccount(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	return &accountResolver{root: r, a: *a}, nil
}

func (r *Resolver) Transaction(ctx context.Context, args struct{ ID graphql.ID }) (*transactionResolver, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	return r.transaction(ctx, &id)
}
