// Package db provides PostgreSQL storage for personal information and job
// application tracking.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the tables if they do not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS personal_info (
			id SERIAL PRIMARY KEY,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			phone VARCHAR(50),
			address VARCHAR(255),
			city VARCHAR(100),
			postal_code VARCHAR(20),
			title VARCHAR(200),
			summary TEXT,
			linkedin VARCHAR(255),
			github VARCHAR(255),
			skills JSONB,
			experience JSONB,
			education JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS job_applications (
			id SERIAL PRIMARY KEY,
			personal_info_id INTEGER REFERENCES personal_info(id),
			job_title VARCHAR(200) NOT NULL,
			company_name VARCHAR(200) NOT NULL,
			job_description TEXT,
			job_requirements TEXT,
			cv_file_path VARCHAR(500),
			cover_letter_file_path VARCHAR(500),
			cv_download_url VARCHAR(500),
			cover_letter_download_url VARCHAR(500),
			matched_projects JSONB,
			application_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			status VARCHAR(50) NOT NULL DEFAULT 'applied',
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_job_applications_personal_info
			ON job_applications(personal_info_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
