package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"money-server/src/graph"
	"money-server/src/handlers"
	"money-server/src/ledger"
	"money-server/src/middleware"
	"money-server/src/util"
)

func NewRouter(env *handlers.Env) (*chi.Mux, error) {
	cfg := env.Config
	gql, err := graph.Handler(graph.NewResolver(env.Pool, env.Cache, ledger.NewRatioBounds(cfg.ExchangeRatioMin, cfg.ExchangeRatioMax)))
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.ReadOnlyMiddleware(cfg.ReadOnly))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(env))
		r.Post("/register", handlers.Register(env))
		if env.Plaid != nil {
			r.Post("/plaid/webhook", handlers.PlaidWebhook(env, util.NewWebhookVerifier(util.PlaidKeyFetcher(env.Plaid))))
		}

		// Protected routes
		r.With(middleware.JWTAuthMiddleware(cfg.JWTSecret)).Group(func(r chi.Router) {
			r.Handle("/graphql", gql)

			// User
			r.Get("/user", handlers.GetCurrentUser(env))
			r.Post("/user/change-password", handlers.ChangePassword(env))
			r.Delete("/user", handlers.DeleteUser(env))

			r.Get("/dashboard", handlers.Dashboard(env))

			// Banks and accounts
			r.Get("/banks", handlers.ListBanks(env))
			r.Post("/banks", handlers.CreateBank(env))
			r.Get("/banks/{bank_id}", handlers.GetBank(env))
			r.Put("/banks/{bank_id}", handlers.UpdateBank(env))
			r.Delete("/banks/{bank_id}", handlers.DeleteBank(env))

			r.Get("/accounts", handlers.ListAccounts(env))
			r.Post("/accounts", handlers.CreateAccount(env))
			r.Post("/accounts/recalculate", handlers.RecalculateAllAccounts(env))
			r.Get("/accounts/{account_id}", handlers.GetAccount(env))
			r.Get("/accounts/{account_id}/chart", handlers.AccountChart(env))
			r.Put("/accounts/{account_id}", handlers.UpdateAccount(env))
			r.Delete("/accounts/{account_id}", handlers.DeleteAccount(env))
			r.Post("/accounts/{account_id}/recalculate", handlers.RecalculateAccount(env))

			// Transactions
			r.Get("/transactions", handlers.ListTransactions(env))
			r.Post("/transactions", handlers.CreateTransaction(env))
			r.Get("/transactions/match", handlers.MatchSuggestions(env))
			r.Post("/transactions/match", handlers.ApplyMatches(env))
			r.Post("/transactions/require-detail", handlers.MarkRequireDetail(env))
			r.Get("/transactions/unreviewed", handlers.UnreviewedTransactions(env))
			r.Get("/transactions/unlinked-internal", handlers.UnlinkedInternalTransactions(env))
			r.Get("/transactions/missing-detail", handlers.MissingDetailTransactions(env))
			r.Delete("/transactions/details/{detail_id}", handlers.DeleteTransactionDetail(env))
			r.Get("/transactions/{transaction_id}", handlers.GetTransaction(env))
			r.Put("/transactions/{transaction_id}", handlers.UpdateTransaction(env))
			r.Delete("/transactions/{transaction_id}", handlers.DeleteTransaction(env))
			r.Post("/transactions/{transaction_id}/reviewed", handlers.ToggleReviewed(env))
			r.Post("/transactions/{transaction_id}/link", handlers.LinkTransaction(env))
			r.Delete("/transactions/{transaction_id}/link", handlers.UnlinkTransaction(env))
			r.Post("/transactions/{transaction_id}/details", handlers.AddTransactionDetail(env))

			// Categories, retailers and items
			r.Get("/categories", handlers.ListCategories(env))
			r.Get("/categories/summary", handlers.CategorySummary(env))
			r.Get("/categories/{category}", handlers.CategoryDetail(env))

			r.Get("/retailers", handlers.ListRetailers(env))
			r.Post("/retailers", handlers.CreateRetailer(env))
			r.Get("/retailers/summary", handlers.RetailerSummary(env))
			r.Post("/retailers/recategorize", handlers.RecategorizeRetailers(env))
			r.Get("/retailers/{retailer_id}", handlers.GetRetailer(env))
			r.Put("/retailers/{retailer_id}", handlers.UpdateRetailer(env))
			r.Delete("/retailers/{retailer_id}", handlers.DeleteRetailer(env))

			r.Get("/detail-items", handlers.ListDetailItems(env))
			r.Post("/detail-items", handlers.CreateDetailItem(env))
			r.Get("/detail-items/{item_id}", handlers.GetDetailItem(env))
			r.Put("/detail-items/{item_id}", handlers.UpdateDetailItem(env))
			r.Delete("/detail-items/{item_id}", handlers.DeleteDetailItem(env))

			// Stocks
			r.Get("/stocks", handlers.ListStocks(env))
			r.Post("/stocks", handlers.CreateStock(env))
			r.Get("/stocks/snapshot", handlers.StockSnapshot(env))
			r.Get("/stocks/holdings", handlers.ListHoldings(env))
			r.Get("/stocks/transactions", handlers.ListStockTransactions(env))
			r.Post("/stocks/transactions", handlers.CreateStockTransaction(env))
			r.Put("/stocks/transactions/{stock_transaction_id}", handlers.UpdateStockTransaction(env))
			r.Delete("/stocks/transactions/{stock_transaction_id}", handlers.DeleteStockTransaction(env))
			r.Get("/stocks/{stock_id}", handlers.GetStock(env))
			r.Put("/stocks/{stock_id}", handlers.UpdateStock(env))
			r.Delete("/stocks/{stock_id}", handlers.DeleteStock(env))
			r.Post("/stocks/{stock_id}/prices", handlers.SaveStockPrice(env))

			// Salaries
			r.Get("/salaries", handlers.ListSalaries(env))
			r.Post("/salaries", handlers.CreateSalary(env))
			r.Get("/salaries/{salary_id}", handlers.GetSalary(env))
			r.Put("/salaries/{salary_id}", handlers.UpdateSalary(env))
			r.Delete("/salaries/{salary_id}", handlers.DeleteSalary(env))

			// Exchanges and snapshots
			r.Get("/exchanges", handlers.ListExchanges(env))
			r.Put("/exchanges/{exchange_id}", handlers.UpdateExchangeType(env))
			r.Delete("/exchanges/{exchange_id}", handlers.DeleteExchange(env))

			r.Get("/snapshots", handlers.ListSnapshots(env))
			r.Post("/snapshots", handlers.RebuildSnapshots(env))
			r.Get("/snapshots/charts", handlers.SnapshotCharts(env))
			r.Delete("/snapshots/{snapshot_id}", handlers.DeleteSnapshot(env))

			// Amazon orders
			r.Get("/amazon-orders", handlers.ListAmazonOrders(env))
			r.Post("/amazon-orders", handlers.CreateAmazonOrder(env))
			r.Get("/amazon-orders/{order_id}", handlers.GetAmazonOrder(env))
			r.Put("/amazon-orders/{order_id}", handlers.UpdateAmazonOrder(env))
			r.Delete("/amazon-orders/{order_id}", handlers.DeleteAmazonOrder(env))
			r.Post("/amazon-orders/{order_id}/link", handlers.LinkAmazonOrder(env))

			// Yearly summary
			r.Get("/years", handlers.TransactionYears(env))
			r.Get("/years/{year}", handlers.YearSummary(env))

			// Budget
			r.Post("/budgets", handlers.CreateBudget(env))
			r.Get("/budgets", handlers.GetAllBudgets(env))
			r.Get("/budgets/status", handlers.BudgetStatus(env))
			r.Get("/budgets/{budget_id}", handlers.GetBudgetByID(env))
			r.Put("/budgets/{budget_id}", handlers.UpdateBudget(env))
			r.Delete("/budgets/{budget_id}", handlers.DeleteBudget(env))

			// Transaction Rules
			r.Post("/transaction-rules", handlers.CreateTransactionRule(env))
			r.Post("/transaction-rules/trigger", handlers.TriggerTransactionRules(env))
			r.Get("/transaction-rules", handlers.GetAllTransactionRules(env))
			r.Get("/transaction-rules/{rule_id}", handlers.GetTransactionRuleByID(env))
			r.Put("/transaction-rules/{rule_id}", handlers.UpdateTransactionRule(env))
			r.Delete("/transaction-rules/{rule_id}", handlers.DeleteTransactionRule(env))

			// Imports
			r.Get("/imports/profiles", handlers.ListImportProfiles(env))
			r.Get("/imports", handlers.ListImportBatches(env))
			r.Post("/imports", handlers.ImportStatement(env))
			r.Delete("/imports/{batch_id}", handlers.DeleteImportBatch(env))

			// Plaid
			r.Post("/plaid/create-link-token", handlers.CreateLinkToken(env))
			r.Post("/plaid/exchange-public-token", handlers.ExchangePublicToken(env))
			r.Get("/plaid/items", handlers.GetPlaidItems(env))
			r.Get("/plaid/items/{item_id}/accounts", handlers.GetPlaidAccounts(env))
			r.Post("/plaid/items/{item_id}/sync", handlers.SyncPlaidItem(env))
			r.Delete("/plaid/items/{item_id}", handlers.DeletePlaidItem(env))
		})

		// Super Admin Routes
		r.With(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.SuperAdminMiddleware).Group(func(r chi.Router) {
			r.Post("/admin/cache/clear/{cache_name}", handlers.ClearCache(env))
		})
	})

	return r, nil
}
