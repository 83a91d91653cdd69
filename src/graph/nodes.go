package graph

import (
	"context"
	"sort"

	graphql "github.com/graph-gophers/graphql-go"

	store "money-server/src/db"
	db "money-server/src/db/sql"
	"money-server/src/ledger"
	"money-server/src/models"
)

type bankResolver struct {
	root *Resolver
	b    models.Bank
}

func (r *bankResolver) ID() graphql.ID { return toID(r.b.ID) }
func (r *bankResolver) Name() string   { return r.b.Name }

func (r *bankResolver) Accounts(ctx context.Context) ([]*accountResolver, error) {
	bankID := r.b.ID
	accounts, _, err := db.ListAccounts(ctx, r.root.pool, db.AccountFilter{BankID: &bankID}, store.Page{})
	if err != nil {
		return nil, err
	}
	out := make([]*accountResolver, len(accounts))
	for i, a := range accounts {
		out[i] = &accountResolver{root: r.root, a: a}
	}
	return out, nil
}

type accountResolver struct {
	root *Resolver
	a    models.Account
}

func (r *accountResolver) ID() graphql.ID          { return toID(r.a.ID) }
func (r *accountResolver) Name() string            { return r.a.Name }
func (r *accountResolver) Alias() *string          { return r.a.Alias }
func (r *accountResolver) DisplayName() string     { return r.a.DisplayName() }
func (r *accountResolver) Type() string            { return string(r.a.Type) }
func (r *accountResolver) Currency() string        { return string(r.a.Currency) }
func (r *accountResolver) Amount() Decimal         { return newDecimal(r.a.Amount) }
func (r *accountResolver) FirstTransaction() *Date { return optionalDate(r.a.FirstTransaction) }
func (r *accountResolver) LastTransaction() *Date  { return optionalDate(r.a.LastTransaction) }
func (r *accountResolver) LastUpdate() *Date       { return optionalDate(r.a.LastUpdate) }
func (r *accountResolver) IsActive() bool          { return r.a.IsActive }

func (r *accountResolver) Bank(ctx context.Context) (*bankResolver, error) {
	b, err := db.GetBank(ctx, r.root.pool, r.a.BankID)
	if err != nil {
		return nil, err
	}
	return &bankResolver{root: r.root, b: *b}, nil
}

func (r *accountResolver) Transactions(ctx context.Context, args struct {
	First *int32
	After *string
}) (*connection[*transactionResolver], error) {
	accountID := r.a.ID
	var f db.TransactionFilter
	f.AccountID = &accountID
	return r.root.transactionConnection(ctx, f, args.First, args.After)
}

func (r *accountResolver) StockTransactions(ctx context.Context) ([]*stockTransactionResolver, error) {
	txns, err := db.ListStockTransactions(ctx, r.root.pool, r.a.ID)
	if err != nil {
		return nil, err
	}
	out := make([]*stockTransactionResolver, len(txns))
	for i, st := range txns {
		out[i] = &stockTransactionResolver{root: r.root, st: st}
	}
	return out, nil
}

type retailerResolver struct {
	r models.Retailer
}

func (r *retailerResolver) ID() graphql.ID   { return toID(r.r.ID) }
func (r *retailerResolver) Name() string     { return r.r.Name }
func (r *retailerResolver) Type() string     { return string(r.r.Type) }
func (r *retailerResolver) Category() string { return string(r.r.Category) }

type transactionResolver struct {
	root *Resolver
	t    models.Transaction
}

func (r *transactionResolver) ID() graphql.ID         { return toID(r.t.ID) }
func (r *transactionResolver) Amount() Decimal        { return newDecimal(r.t.Amount) }
func (r *transactionResolver) Balance() *Decimal      { return nullDecimal(r.t.Balance) }
func (r *transactionResolver) SortingAmount() Decimal { return newDecimal(r.t.SortingAmount()) }
func (r *transactionResolver) Date() Date             { return newDate(r.t.Date) }
func (r *transactionResolver) Note() *string          { return r.t.Note }
func (r *transactionResolver) Type() string           { return string(r.t.Type) }
func (r *transactionResolver) IsInternal() bool       { return r.t.IsInternal }
func (r *transactionResolver) RequiresDetail() bool   { return r.t.RequiresDetail }
func (r *transactionResolver) Reviewed() bool         { return r.t.Reviewed }

func (r *transactionResolver) Account(ctx context.Context) (*accountResolver, error) {
	return r.root.account(ctx, r.t.AccountID)
}

func (r *transactionResolver) Retailer(ctx context.Context) (*retailerResolver, error) {
	if r.t.RetailerID == nil {
		return nil, nil
	}
	return r.root.retailer(ctx, *r.t.RetailerID)
}

func (r *transactionResolver) RelatedTransaction(ctx context.Context) (*transactionResolver, error) {
	return r.root.transaction(ctx, r.t.RelatedTransactionID)
}

func (r *transactionResolver) Details(ctx context.Context) ([]*detailResolver, error) {
	details, err := db.ListTransactionDetails(ctx, r.root.pool, r.t.ID)
	if err != nil {
		return nil, err
	}
	out := make([]*detailResolver, len(details))
	for i, d := range details {
		out[i] = &detailResolver{d: d}
	}
	return out, nil
}

type detailResolver struct {
	d models.TransactionDetail
}

func (r *detailResolver) ID() graphql.ID  { return toID(r.d.ID) }
func (r *detailResolver) Item() string    { return r.d.ItemName }
func (r *detailResolver) Note() *string   { return r.d.Note }
func (r *detailResolver) Amount() Decimal { return newDecimal(r.d.Amount) }
func (r *detailResolver) Count() Decimal  { return newDecimal(r.d.Count) }

type snapshotEntryResolver struct {
	account string
	amount  Decimal
}

func (r *snapshotEntryResolver) Account() string { return r.account }
func (r *snapshotEntryResolver) Amount() Decimal { return r.amount }

type snapshotResolver struct {
	s models.AmountSnapshot
}

func (r *snapshotResolver) ID() graphql.ID   { return toID(r.s.ID) }
func (r *snapshotResolver) Date() Date       { return newDate(r.s.Date) }
func (r *snapshotResolver) Currency() string { return string(r.s.Currency) }
func (r *snapshotResolver) Amount() Decimal  { return newDecimal(r.s.Amount) }

// Summary lists the per-account breakdown ordered by account name.
func (r *snapshotResolver) Summary() []*snapshotEntryResolver {
	out := make([]*snapshotEntryResolver, 0, len(r.s.Summary))
	for name, amount := range r.s.Summary {
		out = append(out, &snapshotEntryResolver{account: name, amount: newDecimal(amount)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].account < out[j].account })
	return out
}

type checkResolver struct {
	c ledger.Check
}

func (r *checkResolver) Name() string  { return r.c.Name }
func (r *checkResolver) Diff() Decimal { return newDecimal(r.c.Diff) }
func (r *checkResolver) Valid() bool   { return r.c.Valid }

type salaryResolver struct {
	root *Resolver
	s    models.Salary
}

func (r *salaryResolver) ID() graphql.ID           { return toID(r.s.ID) }
func (r *salaryResolver) Date() Date               { return newDate(r.s.Date) }
func (r *salaryResolver) GrossPay() Decimal        { return newDecimal(r.s.GrossPay) }
func (r *salaryResolver) TotalAdjustment() Decimal { return newDecimal(r.s.TotalAdjustment) }
func (r *salaryResolver) TotalWithheld() Decimal   { return newDecimal(r.s.TotalWithheld) }
func (r *salaryResolver) TotalDeduction() Decimal  { return newDecimal(r.s.TotalDeduction) }
func (r *salaryResolver) NetPay() Decimal          { return newDecimal(r.s.NetPay) }

func (r *salaryResolver) Transaction(ctx context.Context) (*transactionResolver, error) {
	id := r.s.TransactionID
	return r.root.transaction(ctx, &id)
}

// Checks validates the statement against its deposit transaction.
func (r *salaryResolver) Checks(ctx context.Context) ([]*checkResolver, error) {
	t, err := db.GetTransaction(ctx, r.root.pool, r.s.TransactionID)
	if err != nil {
		return nil, err
	}
	checks := ledger.SalaryValidity(r.s, t.Amount)
	out := make([]*checkResolver, len(checks))
	for i, c := range checks {
		out[i] = &checkResolver{c: c}
	}
	return out, nil
}

type stockResolver struct {
	s models.Stock
}

func (r *stockResolver) ID() graphql.ID   { return toID(r.s.ID) }
func (r *stockResolver) Name() string     { return r.s.Name }
func (r *stockResolver) Ticker() *string  { return r.s.Ticker }
func (r *stockResolver) Currency() string { return string(r.s.Currency) }

type stockTransactionResolver struct {
	root *Resolver
	st   models.StockTransaction
}

func (r *stockTransactionResolver) ID() graphql.ID    { return toID(r.st.ID) }
func (r *stockTransactionResolver) Date() Date        { return newDate(r.st.Date) }
func (r *stockTransactionResolver) Price() Decimal    { return newDecimal(r.st.Price) }
func (r *stockTransactionResolver) Shares() Decimal   { return newDecimal(r.st.Shares) }
func (r *stockTransactionResolver) Amount() Decimal   { return newDecimal(r.st.Amount) }
func (r *stockTransactionResolver) Balance() *Decimal { return nullDecimal(r.st.Balance) }
func (r *stockTransactionResolver) Note() string      { return r.st.Note }

func (r *stockTransactionResolver) Account(ctx context.Context) (*accountResolver, error) {
	return r.root.account(ctx, r.st.AccountID)
}

func (r *stockTransactionResolver) Stock(ctx context.Context) (*stockResolver, error) {
	s, err := db.GetStock(ctx, r.root.pool, r.st.StockID)
	if err != nil {
		return nil, err
	}
	return &stockResolver{s: *s}, nil
}

func (r *stockTransactionResolver) RelatedTransaction(ctx context.Context) (*transactionResolver, error) {
	return r.root.transaction(ctx, r.st.RelatedTransactionID)
}

type amazonOrderResolver struct {
	root *Resolver
	o    models.AmazonOrder
}

func (r *amazonOrderResolver) ID() graphql.ID   { return toID(r.o.ID) }
func (r *amazonOrderResolver) Date() Date       { return newDate(r.o.Date) }
func (r *amazonOrderResolver) Item() string     { return r.o.Item }
func (r *amazonOrderResolver) IsReturned() bool { return r.o.IsReturned }

func (r *amazonOrderResolver) Transaction(ctx context.Context) (*transactionResolver, error) {
	return r.root.transaction(ctx, r.o.TransactionID)
}

func (r *amazonOrderResolver) ReturnTransaction(ctx context.Context) (*transactionResolver, error) {
	return r.root.transaction(ctx, r.o.ReturnTransactionID)
}

type exchangeResolver struct {
	e models.Exchange
}

func (r *exchangeResolver) ID() graphql.ID       { return toID(r.e.ID) }
func (r *exchangeResolver) Date() Date           { return newDate(r.e.Date) }
func (r *exchangeResolver) FromAmount() Decimal  { return newDecimal(r.e.FromAmount) }
func (r *exchangeResolver) ToAmount() Decimal    { return newDecimal(r.e.ToAmount) }
func (r *exchangeResolver) FromCurrency() string { return string(r.e.FromCurrency) }
func (r *exchangeResolver) ToCurrency() string   { return string(r.e.ToCurrency) }
func (r *exchangeResolver) ExchangeType() string { return string(r.e.ExchangeType) }

func (r *exchangeResolver) RatioPerKrw() *Decimal {
	if r.e.RatioPerKRW == nil {
		return nil
	}
	d := newDecimal(*r.e.RatioPerKRW)
	return &d
}

type linkResultResolver struct {
	source, target *transactionResolver
	exchange       *exchangeResolver
}

func (r *linkResultResolver) Source() *transactionResolver { return r.source }
func (r *linkResultResolver) Target() *transactionResolver { return r.target }
func (r *linkResultResolver) Exchange() *exchangeResolver  { return r.exchange }
