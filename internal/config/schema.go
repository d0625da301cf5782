package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		phone VARCHAR(20) NOT NULL UNIQUE,
		name VARCHAR(100) NOT NULL DEFAULT '',
		rating DOUBLE NOT NULL DEFAULT 0,
		total_ratings INT NOT NULL DEFAULT 0,
		total_exchanges INT NOT NULL DEFAULT 0,
		is_verified TINYINT(1) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		pnr VARCHAR(10) NOT NULL,
		train_number VARCHAR(5) NOT NULL,
		train_name VARCHAR(100) NOT NULL DEFAULT '',
		travel_date VARCHAR(10) NOT NULL,
		boarding_code VARCHAR(10) NOT NULL,
		boarding_name VARCHAR(100) NOT NULL DEFAULT '',
		destination_code VARCHAR(10) NOT NULL,
		destination_name VARCHAR(100) NOT NULL DEFAULT '',
		class_type VARCHAR(5) NOT NULL,
		quota VARCHAR(5) NOT NULL DEFAULT 'GN',
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_tickets_match (train_number, travel_date, status),
		KEY idx_tickets_user (user_id),
		CONSTRAINT fk_tickets_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS passengers (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		ticket_id BIGINT NOT NULL,
		name VARCHAR(100) NOT NULL,
		age INT NOT NULL DEFAULT 0,
		gender VARCHAR(10) NOT NULL DEFAULT '',
		coach VARCHAR(10) NOT NULL DEFAULT '',
		seat_number INT NOT NULL DEFAULT 0,
		berth_type VARCHAR(5) NOT NULL DEFAULT '',
		booking_status VARCHAR(10) NOT NULL DEFAULT '',
		current_status VARCHAR(10) NOT NULL DEFAULT '',
		KEY idx_passengers_ticket (ticket_id),
		CONSTRAINT fk_passengers_ticket FOREIGN KEY (ticket_id) REFERENCES tickets (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS exchange_requests (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		requester_id BIGINT NOT NULL,
		target_id BIGINT NOT NULL,
		requester_ticket_id BIGINT NOT NULL,
		target_ticket_id BIGINT NOT NULL,
		train_number VARCHAR(5) NOT NULL DEFAULT '',
		travel_date VARCHAR(10) NOT NULL DEFAULT '',
		proposal JSON NOT NULL,
		message VARCHAR(500) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		requester_confirmed TINYINT(1) NOT NULL DEFAULT 0,
		target_confirmed TINYINT(1) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_exchange_requester (requester_id, status),
		KEY idx_exchange_target (target_id, status),
		CONSTRAINT fk_exchange_requester FOREIGN KEY (requester_id) REFERENCES users (id),
		CONSTRAINT fk_exchange_target FOREIGN KEY (target_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the tables on first boot. Statements are idempotent
// so running it on every startup is safe.
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
