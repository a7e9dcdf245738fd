package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/eventix/ticket-ledger/internal/ledger"
	"github.com/eventix/ticket-ledger/internal/model"
	"github.com/eventix/ticket-ledger/internal/utils"
)

// ErrEmailExists is returned when registering with a taken email.
var ErrEmailExists = errors.New("email already exists")

// AccountRepo persists application accounts and their native-currency
// balances. Balance mutations always run inside a ledger transaction
// with the row locked via GetBalanceForUpdateTx.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

const accountColumns = "id, email, password_hash, role, balance_units, is_active, created_at, updated_at"

// Create inserts an account with a hashed password and returns its ID.
func (r *AccountRepo) Create(ctx context.Context, email, password, role string, bcryptCost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, balance_units) VALUES (?, ?, ?, 0)",
		email, hash, role)
	if err != nil {
		// MySQL 1062: duplicate entry on the unique email index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanAccount(r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM users WHERE email = ? LIMIT 1", email))
}

// GetByID fetches an account by ID.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM users WHERE id = ? LIMIT 1", id))
}

// GetTx fetches an account inside a transaction.
func (r *AccountRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Account, error) {
	return scanAccount(tx.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM users WHERE id = ? LIMIT 1", id))
}

// GetBalanceForUpdateTx reads an account balance holding its row lock.
func (r *AccountRepo) GetBalanceForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx,
		"SELECT balance_units FROM users WHERE id = ? FOR UPDATE", id).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, ledger.ErrUnknownAccount
	}
	return balance, err
}

// AddBalanceTx applies a signed delta to an account balance. Callers
// validate the account first; a zero delta is a legal no-op so the
// driver's changed-row count is not consulted.
func (r *AccountRepo) AddBalanceTx(ctx context.Context, tx *sql.Tx, id uint64, delta int64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE users SET balance_units = balance_units + ? WHERE id = ?", delta, id)
	return err
}

func scanAccount(row rowScanner) (model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.BalanceUnits,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Account{}, ledger.ErrUnknownAccount
	}
	if err != nil {
		return model.Account{}, err
	}
	return a, nil
}
