package database

import (
	"context"
	"database/sql"
)

// Schema statements are idempotent so Migrate can run on every start.
// Monetary columns are BIGINT units (smallest currency denomination);
// no floating point anywhere in the schema.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255)    NOT NULL,
		password_hash VARCHAR(255)    NOT NULL,
		role          VARCHAR(16)     NOT NULL DEFAULT 'TRADER',
		balance_units BIGINT          NOT NULL DEFAULT 0,
		is_active     BOOLEAN         NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS events (
		id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name             VARCHAR(255)    NOT NULL,
		date             DATETIME        NOT NULL,
		location         VARCHAR(255)    NOT NULL,
		capacity         INT UNSIGNED    NOT NULL,
		base_price_units BIGINT          NOT NULL,
		resale_allowed   BOOLEAN         NOT NULL DEFAULT FALSE,
		resale_cap_units BIGINT          NOT NULL DEFAULT 0,
		minted           INT UNSIGNED    NOT NULL DEFAULT 0,
		created_at       TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		event_id    BIGINT UNSIGNED NOT NULL,
		owner_id    BIGINT UNSIGNED NOT NULL,
		approved_id BIGINT UNSIGNED NULL,
		used        BOOLEAN         NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_tickets_owner (owner_id),
		KEY idx_tickets_event (event_id),
		CONSTRAINT fk_tickets_event FOREIGN KEY (event_id) REFERENCES events (id),
		CONSTRAINT fk_tickets_owner FOREIGN KEY (owner_id) REFERENCES users (id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS listings (
		ticket_id   BIGINT UNSIGNED NOT NULL PRIMARY KEY,
		seller_id   BIGINT UNSIGNED NOT NULL,
		price_units BIGINT          NOT NULL,
		created_at  TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_listings_ticket FOREIGN KEY (ticket_id) REFERENCES tickets (id),
		CONSTRAINT fk_listings_seller FOREIGN KEY (seller_id) REFERENCES users (id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS custody (
		id            TINYINT UNSIGNED NOT NULL PRIMARY KEY,
		balance_units BIGINT           NOT NULL DEFAULT 0
	) ENGINE=InnoDB`,

	// The custody table holds exactly one row.
	`INSERT IGNORE INTO custody (id, balance_units) VALUES (1, 0)`,
}

// Migrate applies the schema. Safe to call on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
