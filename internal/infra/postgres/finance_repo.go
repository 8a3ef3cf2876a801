package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kislikjeka/fintrack/internal/platform/finance"
)

// FinanceRepository implements the finance repository using PostgreSQL.
// Expenses and incomes share one shape and live in two tables.
type FinanceRepository struct {
	pool *pgxpool.Pool
}

// NewFinanceRepository creates a new PostgreSQL finance repository
func NewFinanceRepository(pool *pgxpool.Pool) *FinanceRepository {
	return &FinanceRepository{pool: pool}
}

const recordColumns = `id, amount::text, currency, category, occurred_on, description, created_at, updated_at`

// table maps a kind to its table name; only the two known names ever reach SQL
func table(kind finance.Kind) (string, error) {
	switch kind {
	case finance.KindExpense:
		return "expenses", nil
	case finance.KindIncome:
		return "incomes", nil
	default:
		return "", finance.ErrInvalidKind
	}
}

// Create stores a new record of r.Kind
func (r *FinanceRepository) Create(ctx context.Context, rec *finance.Record) error {
	tbl, err := table(rec.Kind)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO ` + tbl + ` (id, amount, currency, category, occurred_on, description, created_at, updated_at)
		VALUES ($1, $2::numeric, $3, $4, $5, $6, $7, $8)
	`
	_, err = conn(ctx, r.pool).Exec(ctx, query,
		rec.ID, rec.Amount.String(), rec.Currency, rec.Category, rec.Date, rec.Description,
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", rec.Kind, err)
	}
	return nil
}

// Get retrieves a record by kind and ID
func (r *FinanceRepository) Get(ctx context.Context, kind finance.Kind, id uuid.UUID) (*finance.Record, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + recordColumns + ` FROM ` + tbl + ` WHERE id = $1`

	rec, err := scanRecord(conn(ctx, r.pool).QueryRow(ctx, query, id), kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, finance.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	return rec, nil
}

// List retrieves records of a kind, newest first
func (r *FinanceRepository) List(ctx context.Context, kind finance.Kind, f finance.ListFilter) ([]*finance.Record, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if !f.From.IsZero() {
		args = append(args, f.From)
		where = append(where, fmt.Sprintf("occurred_on >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		where = append(where, fmt.Sprintf("occurred_on <= $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + recordColumns + ` FROM ` + tbl
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY occurred_on DESC, created_at DESC`

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %ss: %w", kind, err)
	}
	defer rows.Close()

	records := []*finance.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %ss: %w", kind, err)
	}
	return records, nil
}

// Update updates an existing record
func (r *FinanceRepository) Update(ctx context.Context, rec *finance.Record) error {
	tbl, err := table(rec.Kind)
	if err != nil {
		return err
	}
	query := `
		UPDATE ` + tbl + `
		SET amount = $2::numeric, currency = $3, category = $4, occurred_on = $5, description = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := conn(ctx, r.pool).Exec(ctx, query,
		rec.ID, rec.Amount.String(), rec.Currency, rec.Category, rec.Date, rec.Description, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", rec.Kind, err)
	}
	if tag.RowsAffected() == 0 {
		return finance.ErrRecordNotFound
	}
	return nil
}

// Delete deletes a record, returning false when it did not exist
func (r *FinanceRepository) Delete(ctx context.Context, kind finance.Kind, id uuid.UUID) (bool, error) {
	tbl, err := table(kind)
	if err != nil {
		return false, err
	}
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM `+tbl+` WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Aggregate sums amounts per currency, category and month
func (r *FinanceRepository) Aggregate(ctx context.Context, kind finance.Kind, f finance.AggregateFilter) ([]finance.Bucket, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT currency, category, EXTRACT(MONTH FROM occurred_on)::int AS month, SUM(amount)::text
		FROM ` + tbl
	var args []any
	if f.Year != 0 {
		query += ` WHERE EXTRACT(YEAR FROM occurred_on)::int = $1`
		args = append(args, f.Year)
	}
	query += ` GROUP BY currency, category, month ORDER BY month, category`

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %ss: %w", kind, err)
	}
	defer rows.Close()

	var buckets []finance.Bucket
	for rows.Next() {
		var (
			b     finance.Bucket
			total string
		)
		if err := rows.Scan(&b.Currency, &b.Category, &b.Month, &total); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		if b.Total, err = parseDecimal(total); err != nil {
			return nil, err
		}
		b.Currency = strings.TrimSpace(b.Currency)
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating buckets: %w", err)
	}
	return buckets, nil
}

func scanRecord(row pgx.Row, kind finance.Kind) (*finance.Record, error) {
	rec := &finance.Record{Kind: kind}
	var amount string
	err := row.Scan(&rec.ID, &amount, &rec.Currency, &rec.Category, &rec.Date,
		&rec.Description, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if rec.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	rec.Currency = strings.TrimSpace(rec.Currency)
	return rec, nil
}

// Ensure FinanceRepository implements finance.Repository
var _ finance.Repository = (*FinanceRepository)(nil)
