package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is idempotent and applied on every start.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    password_hash BYTEA NOT NULL,
    super_admin BOOLEAN NOT NULL DEFAULT FALSE,
    last_login TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS banks (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS accounts (
    id BIGSERIAL PRIMARY KEY,
    bank_id BIGINT NOT NULL REFERENCES banks(id) ON DELETE CASCADE,
    name TEXT NOT NULL COLLATE "C",
    alias TEXT,
    type TEXT NOT NULL DEFAULT 'CHECKING_ACCOUNT',
    currency CHAR(3) NOT NULL DEFAULT 'USD',
    amount NUMERIC(15, 2) NOT NULL DEFAULT 0,
    last_update TIMESTAMPTZ,
    first_transaction DATE,
    last_transaction DATE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    plaid_account_id TEXT UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS retailers (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT 'ETC',
    category TEXT NOT NULL DEFAULT 'ETC'
);

CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    retailer_id BIGINT REFERENCES retailers(id) ON DELETE SET NULL,
    amount NUMERIC(15, 2) NOT NULL,
    balance NUMERIC(15, 2),
    date DATE NOT NULL,
    note TEXT,
    is_internal BOOLEAN NOT NULL DEFAULT FALSE,
    requires_detail BOOLEAN NOT NULL DEFAULT FALSE,
    type TEXT NOT NULL DEFAULT 'ETC',
    reviewed BOOLEAN NOT NULL DEFAULT FALSE,
    related_transaction_id BIGINT REFERENCES transactions(id) ON DELETE SET NULL,
    external_id TEXT UNIQUE,
    import_batch TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_transactions_account_date ON transactions(account_id, date);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_retailer ON transactions(retailer_id);

CREATE TABLE IF NOT EXISTS detail_items (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'ETC'
);

CREATE TABLE IF NOT EXISTS transaction_details (
    id BIGSERIAL PRIMARY KEY,
    transaction_id BIGINT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
    item_id BIGINT NOT NULL REFERENCES detail_items(id) ON DELETE CASCADE,
    note TEXT,
    amount NUMERIC(15, 2) NOT NULL,
    count NUMERIC(10, 3) NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS stocks (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    ticker TEXT,
    currency CHAR(3) NOT NULL DEFAULT 'USD'
);

CREATE TABLE IF NOT EXISTS stock_transactions (
    id BIGSERIAL PRIMARY KEY,
    date DATE NOT NULL,
    account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    stock_id BIGINT NOT NULL REFERENCES stocks(id) ON DELETE CASCADE,
    related_transaction_id BIGINT REFERENCES transactions(id) ON DELETE CASCADE,
    price NUMERIC(15, 4) NOT NULL,
    shares NUMERIC(15, 5) NOT NULL,
    amount NUMERIC(15, 2) NOT NULL,
    balance NUMERIC(15, 5),
    note TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS stock_prices (
    id BIGSERIAL PRIMARY KEY,
    stock_id BIGINT NOT NULL REFERENCES stocks(id) ON DELETE CASCADE,
    date DATE NOT NULL,
    price NUMERIC(15, 4) NOT NULL,
    UNIQUE (stock_id, date)
);

CREATE TABLE IF NOT EXISTS salaries (
    id BIGSERIAL PRIMARY KEY,
    date DATE NOT NULL,
    gross_pay NUMERIC(15, 2) NOT NULL,
    total_adjustment NUMERIC(15, 2) NOT NULL,
    total_withheld NUMERIC(15, 2) NOT NULL,
    total_deduction NUMERIC(15, 2) NOT NULL,
    net_pay NUMERIC(15, 2) NOT NULL,
    pay_detail JSONB NOT NULL DEFAULT '{}',
    adjustment_detail JSONB NOT NULL DEFAULT '{}',
    tax_detail JSONB NOT NULL DEFAULT '{}',
    deduction_detail JSONB NOT NULL DEFAULT '{}',
    transaction_id BIGINT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS exchanges (
    id BIGSERIAL PRIMARY KEY,
    date DATE NOT NULL,
    from_transaction_id BIGINT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
    to_transaction_id BIGINT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
    from_amount NUMERIC(15, 2) NOT NULL,
    to_amount NUMERIC(15, 2) NOT NULL,
    from_currency CHAR(3) NOT NULL,
    to_currency CHAR(3) NOT NULL,
    ratio_per_krw NUMERIC(10, 4),
    exchange_type TEXT NOT NULL DEFAULT 'ETC',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS amount_snapshots (
    id BIGSERIAL PRIMARY KEY,
    date DATE NOT NULL,
    currency CHAR(3) NOT NULL,
    amount NUMERIC(15, 2) NOT NULL,
    summary JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (date, currency)
);

CREATE TABLE IF NOT EXISTS amazon_orders (
    id BIGSERIAL PRIMARY KEY,
    date DATE NOT NULL,
    item TEXT NOT NULL,
    is_returned BOOLEAN NOT NULL DEFAULT FALSE,
    transaction_id BIGINT REFERENCES transactions(id) ON DELETE SET NULL,
    return_transaction_id BIGINT REFERENCES transactions(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS budgets (
    id BIGSERIAL PRIMARY KEY,
    amount NUMERIC(15, 2) NOT NULL,
    category TEXT NOT NULL,
    currency CHAR(3) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (category, currency)
);

CREATE TABLE IF NOT EXISTS transaction_rules (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    priority INT NOT NULL DEFAULT 0,
    conditions JSONB NOT NULL,
    category TEXT NOT NULL,
    retailer_id BIGINT REFERENCES retailers(id) ON DELETE SET NULL,
    is_internal BOOLEAN,
    mark_reviewed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS plaid_items (
    id BIGSERIAL PRIMARY KEY,
    item_id TEXT NOT NULL UNIQUE,
    access_token TEXT NOT NULL,
    institution_id TEXT NOT NULL DEFAULT '',
    institution_name TEXT NOT NULL DEFAULT '',
    sync_cursor TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS import_batches (
    id TEXT PRIMARY KEY,
    account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    profile TEXT NOT NULL,
    file_name TEXT NOT NULL,
    row_count INT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
