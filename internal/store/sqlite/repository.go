// Package sqlite implements the transaction store on SQLite via the
// pure-Go modernc driver, with the schema managed by embedded
// golang-migrate migrations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

const columns = "id, type, amount_cents, category, description, date, created_at, updated_at"

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
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

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (type, amount_cents, category, category_lc, description, description_lc, date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(t.Type), t.Amount.Cents,
		t.Category, strings.ToLower(t.Category),
		t.Description, strings.ToLower(t.Description),
		t.Date.String(), now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}

	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"category", t.Category)

	return t, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+columns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) Update(ctx context.Context, id int64, patch core.TransactionPatch) (core.Transaction, error) {
	t, err := r.Get(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	patch.ApplyTo(&t)
	t.UpdatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET type = ?, amount_cents = ?, category = ?, category_lc = ?, description = ?, description_lc = ?, date = ?, updated_at = ?
		 WHERE id = ?`,
		string(t.Type), t.Amount.Cents,
		t.Category, strings.ToLower(t.Category),
		t.Description, strings.ToLower(t.Description),
		t.Date.String(), t.UpdatedAt.Format(time.RFC3339Nano), id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction updated", "id", id)
	return t, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := r.Get(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return t, nil
}

// List runs the page query and the count query concurrently; both use
// the same WHERE clause. No snapshot spans the two reads, so they may
// disagree briefly under concurrent writes.
func (r *Repository) List(ctx context.Context, f core.Filter) (core.Page, error) {
	f = f.Normalize()
	where, args := buildWhere(f)

	var (
		rows  []core.Transaction
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := "SELECT " + columns + " FROM transactions" + where +
			" ORDER BY date DESC, id DESC LIMIT ? OFFSET ?"
		pageArgs := append(append([]any{}, args...), f.PageSize, (f.Page-1)*f.PageSize)
		var err error
		rows, err = r.queryTransactions(gctx, query, pageArgs...)
		if err != nil {
			return fmt.Errorf("query page: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		row := r.db.QueryRowContext(gctx, "SELECT COUNT(*) FROM transactions"+where, args...)
		if err := row.Scan(&total); err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Page{}, err
	}

	return core.Page{
		Data:       rows,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: (total + f.PageSize - 1) / f.PageSize,
	}, nil
}

func (r *Repository) All(ctx context.Context) ([]core.Transaction, error) {
	ts, err := r.queryTransactions(ctx,
		"SELECT "+columns+" FROM transactions ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("list all transactions: %w", err)
	}
	return ts, nil
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	dbRows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer dbRows.Close()

	ts := make([]core.Transaction, 0)
	for dbRows.Next() {
		t, err := scanTransaction(dbRows)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, dbRows.Err()
}

// buildWhere translates the filter into a WHERE clause mirroring
// core.Filter.Matches: AND across filters, OR inside the search term.
func buildWhere(f core.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if !f.StartDate.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, f.StartDate.String())
	}
	if !f.EndDate.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, f.EndDate.String())
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		// The _lc shadow columns carry Go's Unicode lowercasing, so
		// folding here matches the memory backend for non-ASCII terms.
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		textMatch := `description_lc LIKE ? ESCAPE '\' OR category_lc LIKE ? ESCAPE '\'`

		numeric := false
		var cents int64
		if _, err := strconv.ParseFloat(term, 64); err == nil {
			if c, err := core.ParseCents(term); err == nil {
				numeric = true
				cents = c
			}
		}

		if numeric {
			conds = append(conds, "(amount_cents = ? OR "+textMatch+")")
			args = append(args, cents, pattern, pattern)
		} else {
			conds = append(conds, "("+textMatch+")")
			args = append(args, pattern, pattern)
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike neutralizes LIKE metacharacters so the search term stays a
// literal substring match, same as the memory backend.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		typ        string
		date       string
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(&t.ID, &typ, &t.Amount.Cents, &t.Category, &t.Description,
		&date, &createdAt, &updatedAt)
	if err != nil {
		return core.Transaction{}, err
	}

	t.Type = core.TransactionType(typ)
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}
	return t, nil
}
