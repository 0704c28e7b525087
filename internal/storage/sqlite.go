package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"tally/internal/core"
)

// SQLiteRepository persists the collections in a local SQLite file. Each
// save replaces a whole collection inside one database transaction,
// which is the gateway's unit of atomicity. Rows that no longer parse
// (hand-edited files, partial writes) are skipped with a warning so one
// corrupt record degrades to the empty-collection fallback instead of
// taking every load down.
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

func (r *SQLiteRepository) Transactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, type, category, description, date, is_recurring, recurring_id
		 FROM transactions ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx          core.Transaction
			amount      string
			date        string
			isRecurring int64
			recurringID sql.NullString
		)
		if err := rows.Scan(&tx.ID, &amount, &tx.Type, &tx.Category, &tx.Description, &date, &isRecurring, &recurringID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			slog.WarnContext(ctx, "Skipping transaction with corrupt amount", "id", tx.ID, "amount", amount)
			continue
		}
		if tx.Date, err = core.ParseDate("date", date); err != nil {
			slog.WarnContext(ctx, "Skipping transaction with corrupt date", "id", tx.ID, "date", date)
			continue
		}
		tx.IsRecurring = isRecurring != 0
		tx.RecurringID = recurringID.String
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) SaveTransactions(ctx context.Context, transactions []core.Transaction) error {
	return r.replaceAll(ctx, "transactions", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO transactions (id, amount, type, category, description, date, is_recurring, recurring_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range transactions {
			recurringID := sql.NullString{String: t.RecurringID, Valid: t.RecurringID != ""}
			if _, err := stmt.ExecContext(ctx, t.ID, t.Amount.String(), t.Type, t.Category,
				t.Description, t.Date.String(), boolToInt(t.IsRecurring), recurringID); err != nil {
				return fmt.Errorf("insert transaction %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) RecurringTransactions(ctx context.Context) ([]core.RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, type, category, description, frequency, start_date, end_date, last_generated, is_active
		 FROM recurring_transactions ORDER BY start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("query recurring transactions: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTransaction
	for rows.Next() {
		var (
			rt            core.RecurringTransaction
			amount        string
			startDate     string
			endDate       sql.NullString
			lastGenerated sql.NullString
			isActive      int64
		)
		if err := rows.Scan(&rt.ID, &amount, &rt.Type, &rt.Category, &rt.Description,
			&rt.Frequency, &startDate, &endDate, &lastGenerated, &isActive); err != nil {
			return nil, fmt.Errorf("scan recurring transaction: %w", err)
		}
		if rt.Amount, err = decimal.NewFromString(amount); err != nil {
			slog.WarnContext(ctx, "Skipping recurring template with corrupt amount", "id", rt.ID, "amount", amount)
			continue
		}
		if rt.StartDate, err = core.ParseDate("startDate", startDate); err != nil {
			slog.WarnContext(ctx, "Skipping recurring template with corrupt start date", "id", rt.ID, "start_date", startDate)
			continue
		}
		if endDate.Valid {
			if rt.EndDate, err = core.ParseDate("endDate", endDate.String); err != nil {
				slog.WarnContext(ctx, "Skipping recurring template with corrupt end date", "id", rt.ID, "end_date", endDate.String)
				continue
			}
		}
		if lastGenerated.Valid {
			if rt.LastGenerated, err = core.ParseDate("lastGenerated", lastGenerated.String); err != nil {
				slog.WarnContext(ctx, "Skipping recurring template with corrupt checkpoint", "id", rt.ID, "last_generated", lastGenerated.String)
				continue
			}
		}
		rt.IsActive = isActive != 0
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) SaveRecurringTransactions(ctx context.Context, templates []core.RecurringTransaction) error {
	return r.replaceAll(ctx, "recurring_transactions", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO recurring_transactions (id, amount, type, category, description, frequency, start_date, end_date, last_generated, is_active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range templates {
			if _, err := stmt.ExecContext(ctx, t.ID, t.Amount.String(), t.Type, t.Category,
				t.Description, t.Frequency, t.StartDate.String(),
				nullableDate(t.EndDate), nullableDate(t.LastGenerated), boolToInt(t.IsActive)); err != nil {
				return fmt.Errorf("insert recurring transaction %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Budgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, amount, month, alert_threshold FROM budgets ORDER BY month, id`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b      core.Budget
			amount string
		)
		if err := rows.Scan(&b.ID, &b.Category, &amount, &b.Month, &b.AlertThreshold); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if b.Amount, err = decimal.NewFromString(amount); err != nil {
			slog.WarnContext(ctx, "Skipping budget with corrupt amount", "id", b.ID, "amount", amount)
			continue
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) SaveBudgets(ctx context.Context, budgets []core.Budget) error {
	return r.replaceAll(ctx, "budgets", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO budgets (id, category, amount, month, alert_threshold) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, b := range budgets {
			if _, err := stmt.ExecContext(ctx, b.ID, b.Category, b.Amount.String(), b.Month, b.AlertThreshold); err != nil {
				return fmt.Errorf("insert budget %s: %w", b.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, color FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) SaveCategories(ctx context.Context, categories []core.Category) error {
	return r.replaceAll(ctx, "categories", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO categories (id, name, type, color) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range categories {
			if _, err := stmt.ExecContext(ctx, c.ID, c.Name, c.Type, c.Color); err != nil {
				return fmt.Errorf("insert category %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Settings(ctx context.Context) (core.Settings, error) {
	var s core.Settings
	err := r.db.QueryRowContext(ctx,
		`SELECT currency, theme, date_format, default_view FROM settings WHERE id = 1`).
		Scan(&s.Currency, &s.Theme, &s.DateFormat, &s.DefaultView)
	if err == sql.ErrNoRows {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("query settings: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, settings core.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (id, currency, theme, date_format, default_view) VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET currency = excluded.currency, theme = excluded.theme,
		 date_format = excluded.date_format, default_view = excluded.default_view`,
		settings.Currency, settings.Theme, settings.DateFormat, settings.DefaultView)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// replaceAll swaps a whole collection inside one transaction.
func (r *SQLiteRepository) replaceAll(ctx context.Context, table string, insert func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := insert(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func nullableDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
