package oracle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Cache memoizes oracle responses in sqlite so repeated runs over the same
// scenario do not re-query the model. Keys are the exact (system, prompt)
// pair; entries never expire.
type Cache struct {
	conn *sqlx.DB
	next Responder
}

// OpenCache opens or creates the response cache at path, wrapping next.
func OpenCache(path string, next Responder) (*Cache, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		system_prompt TEXT NOT NULL,
		prompt TEXT NOT NULL,
		response TEXT NOT NULL,
		PRIMARY KEY (system_prompt, prompt)
	);`
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate cache: %w", err)
	}

	return &Cache{conn: conn, next: next}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.conn.Close()
}

// Respond returns the cached response for the prompt pair, querying and
// storing through the wrapped responder on a miss.
func (c *Cache) Respond(ctx context.Context, system, prompt string) (string, error) {
	var cached string
	err := c.conn.GetContext(ctx, &cached,
		"SELECT response FROM responses WHERE system_prompt = ? AND prompt = ?",
		system, prompt,
	)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("cache lookup: %w", err)
	}

	fresh, err := c.next.Respond(ctx, system, prompt)
	if err != nil {
		return "", err
	}
	if _, err := c.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO responses (system_prompt, prompt, response) VALUES (?, ?, ?)",
		system, prompt, fresh,
	); err != nil {
		return "", fmt.Errorf("cache store: %w", err)
	}
	return fresh, nil
}
