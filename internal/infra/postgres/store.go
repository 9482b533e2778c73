// Package postgres implements the sales store on PostgreSQL using a
// bounded pgx connection pool. All multi-statement writes run inside a
// single transaction so a failed batch leaves nothing behind.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Manan1014/ssas-go/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("postgres")

// NewPool opens a bounded connection pool. Callers beyond maxConns queue
// on acquire rather than opening new connections.
func NewPool(ctx context.Context, databaseURL string, maxConns int) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS monthly_sales_data (
	id                    UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id               TEXT NOT NULL,
	year                  INT NOT NULL,
	month                 INT NOT NULL,
	total_revenue         DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_transactions    INT NOT NULL DEFAULT 0,
	avg_transaction_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	top_category          TEXT NOT NULL DEFAULT '',
	raw_data              JSONB NOT NULL DEFAULT '[]',
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, year, month)
);

CREATE TABLE IF NOT EXISTS sales_transactions (
	id              BIGSERIAL PRIMARY KEY,
	monthly_data_id UUID NOT NULL REFERENCES monthly_sales_data(id) ON DELETE CASCADE,
	user_id         TEXT NOT NULL,
	product_name    TEXT NOT NULL,
	sale_date       DATE NOT NULL,
	price           DOUBLE PRECISION NOT NULL,
	quantity        INT NOT NULL,
	total_amount    DOUBLE PRECISION NOT NULL,
	region          TEXT NOT NULL DEFAULT '',
	category        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_sales_transactions_month
	ON sales_transactions (user_id, monthly_data_id);
`

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Store implements the sales store port on top of a pgx pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewStore creates a Postgres-backed sales store.
func NewStore(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

// ListMonthlySummaries returns summaries for a user ordered by
// (year, month) ascending. Zero year/month means no filter on that part.
func (s *Store) ListMonthlySummaries(ctx context.Context, userID string, year, month int) ([]domain.MonthlySummary, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListMonthlySummaries")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID))

	query := `SELECT id, user_id, year, month, total_revenue, total_transactions,
		avg_transaction_value, top_category, raw_data, updated_at
	FROM monthly_sales_data
	WHERE user_id = $1`
	args := []any{userID}
	if year > 0 {
		args = append(args, year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}
	if month > 0 {
		args = append(args, month)
		query += fmt.Sprintf(" AND month = $%d", len(args))
	}
	query += " ORDER BY year, month"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list monthly summaries: %w", err)
	}
	defer rows.Close()

	var out []domain.MonthlySummary
	for rows.Next() {
		var m domain.MonthlySummary
		var raw []byte
		if err := rows.Scan(&m.ID, &m.UserID, &m.Year, &m.Month, &m.TotalRevenue,
			&m.TotalTransactions, &m.AvgTransactionValue, &m.TopCategory, &raw, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan monthly summary: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &m.Transactions); err != nil {
				s.logger.Warn("postgres: corrupt raw_data, ignoring",
					zap.String("summary_id", m.ID), zap.Error(err))
				m.Transactions = nil
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMonthTransactions returns the stored transaction set for one month.
// An empty slice means nothing is stored yet.
func (s *Store) GetMonthTransactions(ctx context.Context, userID string, year, month int) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetMonthTransactions")
	defer span.End()

	rows, err := s.pool.Query(ctx, `
		SELECT t.sale_date, t.product_name, t.category, t.region, t.price, t.quantity
		FROM sales_transactions t
		JOIN monthly_sales_data m ON m.id = t.monthly_data_id
		WHERE m.user_id = $1 AND m.year = $2 AND m.month = $3
		ORDER BY t.id`, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("get month transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var date time.Time
		if err := rows.Scan(&date, &t.Product, &t.Category, &t.Region, &t.Price, &t.Quantity); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date = date.Format("2006-01-02")
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveMonths replaces the summaries and transaction sets of the given
// months in one transaction. On any failure everything is rolled back
// and the error names the month that failed.
func (s *Store) SaveMonths(ctx context.Context, summaries []*domain.MonthlySummary) error {
	ctx, span := tracer.Start(ctx, "Postgres.SaveMonths")
	defer span.End()
	span.SetAttributes(attribute.Int("months", len(summaries)))

	if len(summaries) == 0 {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		first := summaries[0]
		return &domain.ErrStorage{Year: first.Year, Month: first.Month, Err: err}
	}
	defer tx.Rollback(ctx)

	for _, m := range summaries {
		if err := s.saveMonthTx(ctx, tx, m); err != nil {
			return &domain.ErrStorage{Year: m.Year, Month: m.Month, Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		first := summaries[0]
		return &domain.ErrStorage{Year: first.Year, Month: first.Month, Err: err}
	}
	return nil
}

func (s *Store) saveMonthTx(ctx context.Context, tx pgx.Tx, m *domain.MonthlySummary) error {
	raw, err := json.Marshal(m.Transactions)
	if err != nil {
		return fmt.Errorf("marshal raw_data: %w", err)
	}

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO monthly_sales_data
			(user_id, year, month, total_revenue, total_transactions,
			 avg_transaction_value, top_category, raw_data, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (user_id, year, month) DO UPDATE SET
			total_revenue = EXCLUDED.total_revenue,
			total_transactions = EXCLUDED.total_transactions,
			avg_transaction_value = EXCLUDED.avg_transaction_value,
			top_category = EXCLUDED.top_category,
			raw_data = EXCLUDED.raw_data,
			updated_at = now()
		RETURNING id`,
		m.UserID, m.Year, m.Month, m.TotalRevenue, m.TotalTransactions,
		m.AvgTransactionValue, m.TopCategory, raw).Scan(&id)
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	m.ID = id

	// Replace the month's transaction rows with the merged snapshot.
	if _, err := tx.Exec(ctx, `DELETE FROM sales_transactions WHERE monthly_data_id = $1`, id); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	for _, t := range m.Transactions {
		if _, err := tx.Exec(ctx, `
			INSERT INTO sales_transactions
				(monthly_data_id, user_id, product_name, sale_date,
				 price, quantity, total_amount, region, category)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			id, m.UserID, t.Product, t.Date, t.Price, t.Quantity,
			t.Amount(), t.Region, t.Category); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	return nil
}

// DeleteMonth removes one month's summary and its transactions. The FK
// cascade handles the transaction rows.
func (s *Store) DeleteMonth(ctx context.Context, userID string, year, month int) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeleteMonth")
	defer span.End()

	tag, err := s.pool.Exec(ctx, `
		DELETE FROM monthly_sales_data
		WHERE user_id = $1 AND year = $2 AND month = $3`, userID, year, month)
	if err != nil {
		return &domain.ErrStorage{Year: year, Month: month, Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &domain.ErrNotFound{
			Resource: "monthly data",
			ID:       fmt.Sprintf("%s/%d-%02d", userID, year, month),
		}
	}
	return nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}
