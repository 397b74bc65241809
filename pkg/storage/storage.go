// Package storage persists decoded NAS messages to PostgreSQL as an
// alternate or additional sink to the per-file JSON batch output. It keeps
// the teacher's Liquibase-style changelog bookkeeping (a databasechangelog
// table recording which migrations have run) but narrows the schema to the
// single nas_messages table this service needs.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/protei/nasdecode/pkg/nas"
)

// DB wraps a PostgreSQL connection pool and its migration state.
type DB struct {
	conn   *sql.DB
	config *Config
}

// Config holds connection parameters.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// New opens a connection, verifies it, and runs pending migrations.
func New(config *Config) (*DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.Database, config.SSLMode)

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: opening database: %w", err)
	}

	conn.SetMaxOpenConns(config.MaxConns)
	conn.SetMaxIdleConns(config.MaxIdle)
	conn.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("storage: pinging database: %w", err)
	}

	db := &DB{conn: conn, config: config}
	if err := db.runMigrations(); err != nil {
		return nil, fmt.Errorf("storage: running migrations: %w", err)
	}
	return db, nil
}

// migration is one Liquibase-style changeset.
type migration struct {
	ID          string
	Author      string
	Description string
	SQL         string
}

var migrations = []migration{
	{
		ID:          "001-create-nas-messages-table",
		Author:      "nasdecode",
		Description: "Create nas_messages table",
		SQL: `
		CREATE TABLE IF NOT EXISTS nas_messages (
			id BIGSERIAL PRIMARY KEY,
			source_file VARCHAR(500) NOT NULL,
			packet_index INTEGER NOT NULL,
			class VARCHAR(10) NOT NULL,
			message_type VARCHAR(100) NOT NULL,
			variant VARCHAR(10),
			body JSONB NOT NULL,
			decoded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (source_file, packet_index)
		);
		CREATE INDEX IF NOT EXISTS idx_nas_messages_message_type ON nas_messages(message_type);
		CREATE INDEX IF NOT EXISTS idx_nas_messages_class ON nas_messages(class);
		`,
	},
	{
		ID:          "002-create-nas_decode_errors-table",
		Author:      "nasdecode",
		Description: "Create nas_decode_errors table for non-fatal per-packet failures",
		SQL: `
		CREATE TABLE IF NOT EXISTS nas_decode_errors (
			id BIGSERIAL PRIMARY KEY,
			source_file VARCHAR(500) NOT NULL,
			packet_index INTEGER NOT NULL,
			error_text TEXT NOT NULL,
			decoded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (source_file, packet_index)
		);
		`,
	},
}

func (db *DB) runMigrations() error {
	createChangeLogTable := `
	CREATE TABLE IF NOT EXISTS databasechangelog (
		id VARCHAR(255) NOT NULL,
		author VARCHAR(255) NOT NULL,
		filename VARCHAR(255) NOT NULL,
		dateexecuted TIMESTAMP NOT NULL,
		orderexecuted INTEGER NOT NULL,
		exectype VARCHAR(10) NOT NULL,
		description VARCHAR(255)
	);
	CREATE TABLE IF NOT EXISTS databasechangeloglock (
		id INTEGER NOT NULL PRIMARY KEY,
		locked BOOLEAN NOT NULL,
		lockgranted TIMESTAMP,
		lockedby VARCHAR(255)
	);
	INSERT INTO databasechangeloglock (id, locked) VALUES (1, FALSE) ON CONFLICT DO NOTHING;
	`
	if _, err := db.conn.Exec(createChangeLogTable); err != nil {
		return fmt.Errorf("creating changelog table: %w", err)
	}

	for _, m := range migrations {
		if err := db.executeMigration(m); err != nil {
			return fmt.Errorf("executing migration %s: %w", m.ID, err)
		}
	}
	return nil
}

func (db *DB) executeMigration(m migration) error {
	var count int
	if err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM databasechangelog WHERE id = $1", m.ID,
	).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := db.conn.Exec(m.SQL); err != nil {
		return err
	}

	_, err := db.conn.Exec(`
		INSERT INTO databasechangelog (id, author, filename, dateexecuted, orderexecuted, exectype, description)
		VALUES ($1, $2, 'init', $3, (SELECT COALESCE(MAX(orderexecuted), 0) + 1 FROM databasechangelog), 'EXECUTED', $4)
	`, m.ID, m.Author, time.Now(), m.Description)
	return err
}

// StoreMessage upserts a successfully decoded message keyed by source file
// and packet index.
func (db *DB) StoreMessage(sourceFile string, packetIndex int, msg *nas.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("storage: marshaling message: %w", err)
	}

	messageType, variant := messageTypeAndVariant(msg)

	_, err = db.conn.Exec(`
		INSERT INTO nas_messages (source_file, packet_index, class, message_type, variant, body)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source_file, packet_index) DO UPDATE
		SET class = EXCLUDED.class, message_type = EXCLUDED.message_type,
		    variant = EXCLUDED.variant, body = EXCLUDED.body, decoded_at = CURRENT_TIMESTAMP
	`, sourceFile, packetIndex, string(msg.Class), messageType, variant, body)
	return err
}

// StoreError records a non-fatal per-packet decode failure.
func (db *DB) StoreError(sourceFile string, packetIndex int, decodeErr error) error {
	_, err := db.conn.Exec(`
		INSERT INTO nas_decode_errors (source_file, packet_index, error_text)
		VALUES ($1, $2, $3)
		ON CONFLICT (source_file, packet_index) DO UPDATE
		SET error_text = EXCLUDED.error_text, decoded_at = CURRENT_TIMESTAMP
	`, sourceFile, packetIndex, decodeErr.Error())
	return err
}

func messageTypeAndVariant(msg *nas.Message) (string, string) {
	switch msg.Class {
	case nas.ClassEMM:
		if msg.EMM == nil {
			return "", ""
		}
		return msg.EMM.Type.String(), string(msg.EMM.Variant)
	case nas.ClassESM:
		if msg.ESM == nil {
			return "", ""
		}
		return msg.ESM.Type.String(), ""
	default:
		return "", ""
	}
}

// StoredMessage is one row of decode history, ordered most recent first.
// Body carries the message exactly as StoreMessage serialized it; most of
// the NAS types only implement MarshalJSON (for a readable enum-name
// rendering), so round-tripping through a typed nas.Message would lose
// information. Callers that need the typed form parse directly off the
// capture batch output instead.
type StoredMessage struct {
	SourceFile  string          `json:"source_file"`
	PacketIndex int             `json:"packet_index"`
	DecodedAt   time.Time       `json:"decoded_at"`
	Body        json.RawMessage `json:"body"`
}

// RecentMessages returns up to limit most recently decoded messages.
func (db *DB) RecentMessages(limit int) ([]StoredMessage, error) {
	rows, err := db.conn.Query(`
		SELECT source_file, packet_index, body, decoded_at
		FROM nas_messages
		ORDER BY decoded_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: querying recent messages: %w", err)
	}
	defer rows.Close()

	var results []StoredMessage
	for rows.Next() {
		var (
			sourceFile  string
			packetIndex int
			body        []byte
			decodedAt   time.Time
		)
		if err := rows.Scan(&sourceFile, &packetIndex, &body, &decodedAt); err != nil {
			return nil, fmt.Errorf("storage: scanning recent message row: %w", err)
		}
		results = append(results, StoredMessage{
			SourceFile:  sourceFile,
			PacketIndex: packetIndex,
			DecodedAt:   decodedAt,
			Body:        json.RawMessage(body),
		})
	}
	return results, rows.Err()
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// GetConnection returns the underlying *sql.DB for callers that need direct
// access.
func (db *DB) GetConnection() *sql.DB {
	return db.conn
}
