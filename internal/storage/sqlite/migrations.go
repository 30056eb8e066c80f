package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: flats must be created before users and items due to foreign key constraints.
const schema = `
CREATE TABLE IF NOT EXISTS flats (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    flat_id TEXT,
    active INTEGER NOT NULL DEFAULT 1,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (flat_id) REFERENCES flats(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    flat_id TEXT NOT NULL,
    name TEXT NOT NULL,
    is_bill INTEGER NOT NULL,
    initial_value REAL NOT NULL,
    purchase_date TEXT NOT NULL,
    yearly_depreciation REAL NOT NULL,
    minimum_value REAL,
    minimum_value_pct REAL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (flat_id) REFERENCES flats(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS item_users (
    item_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (item_id, user_id),
    FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    creditor_id TEXT NOT NULL,
    debtor_id TEXT NOT NULL,
    item_id TEXT NOT NULL,
    amount REAL NOT NULL,
    paid INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (creditor_id) REFERENCES users(id) ON DELETE RESTRICT,
    FOREIGN KEY (debtor_id) REFERENCES users(id) ON DELETE RESTRICT,
    FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_users_flat_id ON users(flat_id);
CREATE INDEX IF NOT EXISTS idx_items_flat_id ON items(flat_id);
CREATE INDEX IF NOT EXISTS idx_item_users_user_id ON item_users(user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_creditor_id ON transactions(creditor_id);
CREATE INDEX IF NOT EXISTS idx_transactions_debtor_id ON transactions(debtor_id);
CREATE INDEX IF NOT EXISTS idx_transactions_item_id ON transactions(item_id);
`

// tables lists every table in delete-safe order (children first).
var tables = []string{"transactions", "item_users", "items", "users", "flats"}

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
