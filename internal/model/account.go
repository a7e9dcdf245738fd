package model

import "time"

// Account roles. Admins manage the catalog, validate tickets at the
// gate and withdraw custody funds; traders buy, hold and resell tickets.
const (
	RoleAdmin  = "ADMIN"
	RoleTrader = "TRADER"
)

// Account is an application user with a native-currency balance. It
// stands in for the on-chain wallet of the original design: payments
// debit the buyer's balance and credit the seller or the custody pot
// inside the same transaction that moves ownership.
type Account struct {
	ID           uint64    // users.id
	Email        string    // users.email (unique, lower-cased)
	PasswordHash string    // users.password_hash (bcrypt)
	Role         string    // users.role (ADMIN or TRADER)
	BalanceUnits int64     // users.balance_units
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models a row in refresh_tokens. Only the SHA-256 hash of
// the raw token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	AccountID uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
