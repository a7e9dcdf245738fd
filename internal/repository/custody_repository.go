package repository

import (
	"context"
	"database/sql"
)

// CustodyRepo persists the single scalar balance of primary-sale
// proceeds held by the issuance engine. The table has exactly one row,
// inserted by the schema migration.
type CustodyRepo struct {
	db *sql.DB
}

func NewCustodyRepo(db *sql.DB) *CustodyRepo { return &CustodyRepo{db: db} }

// GetForUpdateTx reads the custody balance holding its row lock.
func (r *CustodyRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx,
		"SELECT balance_units FROM custody WHERE id = 1 FOR UPDATE").Scan(&balance)
	return balance, err
}

// SetTx stores the custody balance.
func (r *CustodyRepo) SetTx(ctx context.Context, tx *sql.Tx, balance int64) error {
	_, err := tx.ExecContext(ctx, "UPDATE custody SET balance_units = ? WHERE id = 1", balance)
	return err
}
