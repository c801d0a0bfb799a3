package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"walletwise-api/internal/models"
)

// DB wraps the database connection and provides methods for data access.
//
// Stored order matters for payment methods: the recommendation engine uses
// it as the final tie-break, so rows carry an explicit position and queries
// always order by it.
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection and initializes the schema.
func NewDB(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables if they don't exist.
func (db *DB) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS payment_methods (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			bank_name TEXT NOT NULL DEFAULT '',
			last4_digits TEXT NOT NULL DEFAULT '',
			upi_id TEXT NOT NULL DEFAULT '',
			usage_percentage TEXT NOT NULL DEFAULT '0',
			wallet_balance TEXT NOT NULL DEFAULT '0',
			own_offers TEXT NOT NULL DEFAULT '[]',
			position INTEGER NOT NULL,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			amount TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			method_id TEXT NOT NULL,
			method_name TEXT NOT NULL,
			offer_applied TEXT NOT NULL DEFAULT '',
			savings TEXT NOT NULL DEFAULT '0',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pm_user_position ON payment_methods(user_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_txn_user_created ON transactions(user_id, created_at)`,
	}

	for _, query := range queries {
		if _, err := db.conn.Exec(query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	return nil
}

// InsertPaymentMethod appends a method to the end of the user's stored order.
func (db *DB) InsertPaymentMethod(ctx context.Context, userID string, m models.PaymentMethod) error {
	ownOffers, err := json.Marshal(m.Offers)
	if err != nil {
		return fmt.Errorf("failed to serialize offers: %w", err)
	}

	query := `INSERT INTO payment_methods (
		id, user_id, name, type, bank_name, last4_digits, upi_id,
		usage_percentage, wallet_balance, own_offers, position
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		(SELECT COALESCE(MAX(position), 0) + 1 FROM payment_methods WHERE user_id = ?))`

	_, err = db.conn.ExecContext(ctx, query,
		m.ID,
		userID,
		m.Name,
		string(m.Type),
		m.BankName,
		m.Last4Digits,
		m.UPIID,
		m.UsagePercentage.String(),
		m.WalletBalance.String(),
		string(ownOffers),
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment method: %w", err)
	}

	return nil
}

// DeletePaymentMethod removes a saved method. Returns false when no row
// matched.
func (db *DB) DeletePaymentMethod(ctx context.Context, userID, methodID string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM payment_methods WHERE user_id = ? AND id = ?`, userID, methodID)
	if err != nil {
		return false, fmt.Errorf("failed to delete payment method: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

// GetPaymentMethods returns a user's saved methods in stored order.
func (db *DB) GetPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	query := `SELECT id, name, type, bank_name, last4_digits, upi_id,
		usage_percentage, wallet_balance, own_offers
		FROM payment_methods
		WHERE user_id = ?
		ORDER BY position ASC`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment methods: %w", err)
	}
	defer rows.Close()

	var methods []models.PaymentMethod
	for rows.Next() {
		var m models.PaymentMethod
		var typ, usage, balance, ownOffers string

		err := rows.Scan(&m.ID, &m.Name, &typ, &m.BankName, &m.Last4Digits,
			&m.UPIID, &usage, &balance, &ownOffers)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment method: %w", err)
		}

		m.Type = models.MethodType(typ)
		m.UsagePercentage, err = decimal.NewFromString(usage)
		if err != nil {
			return nil, fmt.Errorf("failed to parse usage_percentage: %w", err)
		}
		m.WalletBalance, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("failed to parse wallet_balance: %w", err)
		}
		if err := json.Unmarshal([]byte(ownOffers), &m.Offers); err != nil {
			return nil, fmt.Errorf("failed to parse own offers: %w", err)
		}

		methods = append(methods, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment methods: %w", err)
	}

	return methods, nil
}

// InsertTransaction records one purchase in the savings history.
func (db *DB) InsertTransaction(ctx context.Context, txn models.Transaction) error {
	createdAt := txn.CreatedAt
	if createdAt == "" {
		createdAt = time.Now().UTC().Format(time.RFC3339)
	}

	_, err := db.conn.ExecContext(ctx, `INSERT INTO transactions (
		id, user_id, amount, category, method_id, method_name, offer_applied, savings, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.UserID,
		txn.Amount.String(),
		txn.Category,
		txn.MethodID,
		txn.MethodName,
		txn.OfferApplied,
		txn.Savings.String(),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// GetTransactions returns a user's transactions, newest first.
func (db *DB) GetTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	query := `SELECT id, amount, category, method_id, method_name, offer_applied, savings, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var amount, savings string

		err := rows.Scan(&t.ID, &amount, &t.Category, &t.MethodID,
			&t.MethodName, &t.OfferApplied, &savings, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		t.UserID = userID
		t.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		t.Savings, err = decimal.NewFromString(savings)
		if err != nil {
			return nil, fmt.Errorf("failed to parse savings: %w", err)
		}

		txns = append(txns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}
