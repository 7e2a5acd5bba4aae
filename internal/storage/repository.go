package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"chitieu/internal/core"

	_ "modernc.org/sqlite"
)

// Settings keys in the key-value table.
const (
	settingMonthlyBudget = "monthly_budget"
	settingDarkMode      = "dark_mode"
	settingWebhookURL    = "webhook_url"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// List returns all entries, most recent first.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, entry_date, amount, category, description, original_text
		FROM entries
		ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(ctx, rows)
}

// AddBatch inserts all entries in one transaction: a submission either
// commits completely or not at all.
func (r *SQLiteRepository) AddBatch(ctx context.Context, entries []core.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("validate entry %s: %w", e.ID, err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entries (id, entry_date, amount, category, description, original_text)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.Date.String(), e.Amount, string(e.Category), e.Description, e.OriginalText)
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	slog.InfoContext(ctx, "Entries saved to SQLite", "count", len(entries))
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Entry deleted", "entry_id", id)
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	slog.InfoContext(ctx, "All entries cleared")
	return nil
}

// GetByIDs returns the entries matching the given ids, skipping unknown ones.
func (r *SQLiteRepository) GetByIDs(ctx context.Context, ids []string) ([]core.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, entry_date, amount, category, description, original_text
		FROM entries
		WHERE id IN (`+placeholders+`)
		ORDER BY created_at DESC, rowid DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("get entries by ids: %w", err)
	}
	defer rows.Close()
	return scanEntries(ctx, rows)
}

// Settings reads the settings table. Missing or unparseable values fall back
// to defaults so a damaged row never prevents startup.
func (r *SQLiteRepository) Settings(ctx context.Context) (core.Settings, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return core.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	defer rows.Close()

	var s core.Settings
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return core.Settings{}, fmt.Errorf("scan setting: %w", err)
		}
		switch key {
		case settingMonthlyBudget:
			budget, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				slog.WarnContext(ctx, "Unparseable budget setting, using 0", "value", value)
				continue
			}
			s.MonthlyBudget = budget
		case settingDarkMode:
			s.DarkMode = value == "true"
		case settingWebhookURL:
			s.WebhookURL = value
		}
	}
	if err := rows.Err(); err != nil {
		return core.Settings{}, fmt.Errorf("iterate settings: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) UpdateSettings(ctx context.Context, s core.Settings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	pairs := map[string]string{
		settingMonthlyBudget: strconv.FormatInt(s.MonthlyBudget, 10),
		settingDarkMode:      strconv.FormatBool(s.DarkMode),
		settingWebhookURL:    s.WebhookURL,
	}
	for key, value := range pairs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
		if err != nil {
			return fmt.Errorf("upsert setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	return nil
}

// scanEntries converts result rows to entries. Rows with an unparseable
// date are skipped with a warning instead of failing the whole read.
func scanEntries(ctx context.Context, rows *sql.Rows) ([]core.Entry, error) {
	var entries []core.Entry
	for rows.Next() {
		var (
			e       core.Entry
			dateStr string
			cat     string
		)
		if err := rows.Scan(&e.ID, &dateStr, &e.Amount, &cat, &e.Description, &e.OriginalText); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			slog.WarnContext(ctx, "Skipping entry with corrupt date", "entry_id", e.ID, "date", dateStr)
			continue
		}
		e.Date = date
		e.Category = core.Category(cat)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}
