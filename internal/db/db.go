package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

type DB struct {
	*sql.DB
}

func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn}
	if err := db.ensureSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func (db *DB) ensureSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS syntheses (
			id BIGSERIAL PRIMARY KEY,
			news_id TEXT NOT NULL,
			content_source TEXT NOT NULL,
			tts_engine TEXT NOT NULL,
			filename TEXT NOT NULL,
			text_length INT NOT NULL,
			duration_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to ensure syntheses table: %w", err)
	}
	return nil
}
