// Package db provides the SQLite store behind the SafeFlow ledger.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Accounts
-- balance is a derived cache maintained by the ledger in minor currency units
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    currency TEXT NOT NULL,
    balance INTEGER NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    created_at TEXT NOT NULL
);

-- Import batches
-- status: 'completed' or 'failed' (undone)
CREATE TABLE IF NOT EXISTS import_batches (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    transaction_count INTEGER NOT NULL,
    status TEXT NOT NULL,
    created_at TEXT NOT NULL
);

-- Cash transactions
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    account_id TEXT NOT NULL REFERENCES accounts(id),
    type TEXT NOT NULL,                -- 'income', 'expense' or 'transfer'
    amount INTEGER NOT NULL,           -- positive, minor currency units
    description TEXT NOT NULL,
    date TEXT NOT NULL,                -- RFC 3339, UTC
    category_id TEXT REFERENCES categories(id),
    transfer_to_account_id TEXT REFERENCES accounts(id),
    import_batch_id TEXT REFERENCES import_batches(id),
    is_reconciled INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_account
    ON transactions(account_id);

CREATE INDEX IF NOT EXISTS idx_transactions_transfer_to
    ON transactions(transfer_to_account_id);

CREATE INDEX IF NOT EXISTS idx_transactions_batch
    ON transactions(import_batch_id);

CREATE INDEX IF NOT EXISTS idx_transactions_date
    ON transactions(date);

-- Investment holdings
-- units is a decimal string, cost_basis is in minor currency units
CREATE TABLE IF NOT EXISTS holdings (
    id TEXT PRIMARY KEY,
    account_id TEXT NOT NULL REFERENCES accounts(id),
    symbol TEXT NOT NULL,
    type TEXT NOT NULL,
    units TEXT NOT NULL,
    cost_basis INTEGER NOT NULL,
    current_price INTEGER,
    price_updated_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_holdings_account
    ON holdings(account_id);

-- Investment transactions
-- seq is the application order used to reverse effects
CREATE TABLE IF NOT EXISTS investment_transactions (
    id TEXT PRIMARY KEY,
    holding_id TEXT NOT NULL REFERENCES holdings(id),
    seq INTEGER NOT NULL,
    type TEXT NOT NULL,
    units TEXT NOT NULL,
    price_per_unit INTEGER NOT NULL,
    fees INTEGER NOT NULL DEFAULT 0,
    total_amount INTEGER NOT NULL,
    cost_basis_reduction INTEGER NOT NULL DEFAULT 0,
    franking_percentage TEXT,
    franking_credit_amount INTEGER,
    grossed_up_amount INTEGER,
    date TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_investment_transactions_holding
    ON investment_transactions(holding_id, seq);

-- Export history
-- Tracks which ledger transactions have been written to Beancount files
CREATE TABLE IF NOT EXISTS export_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    transaction_id TEXT NOT NULL UNIQUE,
    issue_date TEXT NOT NULL,          -- YYYY-MM-DD
    amount INTEGER NOT NULL,
    beancount_file TEXT NOT NULL,
    exported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_export_history_date
    ON export_history(issue_date);

-- Key-value metadata about exports and price refreshes
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}
