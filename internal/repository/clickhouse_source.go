package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"BizPulse/internal/domain/models"
	domrepo "BizPulse/internal/domain/repository"
)

// ClickHouseSchema returns the idempotent DDL for the record tables.
func ClickHouseSchema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.customers (
    customer_id String,
    customer_name String,
    segment LowCardinality(String),
    last_order_date Nullable(DateTime64(3, 'UTC')),
    signup_date Nullable(DateTime64(3, 'UTC')),
    lifetime_value Float64
) ENGINE = ReplacingMergeTree ORDER BY customer_id`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.orders (
    order_id String,
    customer_id String,
    order_date DateTime64(3, 'UTC'),
    amount Float64
) ENGINE = MergeTree ORDER BY (order_date, order_id)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.invoices (
    invoice_id String,
    customer_id String,
    invoice_date DateTime64(3, 'UTC'),
    due_date Nullable(DateTime64(3, 'UTC')),
    invoice_amount Float64,
    payment_status LowCardinality(String)
) ENGINE = MergeTree ORDER BY (invoice_date, invoice_id)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.products (
    product_id String,
    product_name String,
    stock_level Float64,
    reorder_threshold Float64
) ENGINE = ReplacingMergeTree ORDER BY product_id`, database),
	}
}

// ClickHouseSource reads records from the tables created by ClickHouseSchema.
type ClickHouseSource struct {
	db       *sql.DB
	database string
}

var _ domrepo.RecordSource = (*ClickHouseSource)(nil)

func NewClickHouseSource(db *sql.DB, database string) *ClickHouseSource {
	return &ClickHouseSource{db: db, database: database}
}

func (s *ClickHouseSource) Customers(ctx context.Context) ([]models.Customer, error) {
	q := fmt.Sprintf("SELECT customer_id, customer_name, segment, last_order_date, signup_date, lifetime_value FROM %s.customers FINAL", s.database)
	return queryRows(ctx, s.db, q, func(rows *sql.Rows) (models.Customer, error) {
		var c models.Customer
		var last, signup sql.NullTime
		if err := rows.Scan(&c.CustomerID, &c.Name, &c.Segment, &last, &signup, &c.LifetimeValue); err != nil {
			return c, err
		}
		c.LastOrderDate = nullTime(last)
		c.SignupDate = nullTime(signup)
		return c, nil
	})
}

func (s *ClickHouseSource) Orders(ctx context.Context) ([]models.Order, error) {
	q := fmt.Sprintf("SELECT order_id, customer_id, order_date, amount FROM %s.orders ORDER BY order_date", s.database)
	return queryRows(ctx, s.db, q, func(rows *sql.Rows) (models.Order, error) {
		var o models.Order
		err := rows.Scan(&o.OrderID, &o.CustomerID, &o.OrderDate, &o.Amount)
		return o, err
	})
}

func (s *ClickHouseSource) Invoices(ctx context.Context) ([]models.Invoice, error) {
	q := fmt.Sprintf("SELECT invoice_id, customer_id, invoice_date, due_date, invoice_amount, payment_status FROM %s.invoices ORDER BY invoice_date", s.database)
	return queryRows(ctx, s.db, q, func(rows *sql.Rows) (models.Invoice, error) {
		var in models.Invoice
		var due sql.NullTime
		if err := rows.Scan(&in.InvoiceID, &in.CustomerID, &in.InvoiceDate, &due, &in.Amount, &in.PaymentStatus); err != nil {
			return in, err
		}
		in.DueDate = nullTime(due)
		return in, nil
	})
}

func (s *ClickHouseSource) Products(ctx context.Context) ([]models.Product, error) {
	q := fmt.Sprintf("SELECT product_id, product_name, stock_level, reorder_threshold FROM %s.products FINAL", s.database)
	return queryRows(ctx, s.db, q, func(rows *sql.Rows) (models.Product, error) {
		var p models.Product
		err := rows.Scan(&p.ProductID, &p.Name, &p.StockLevel, &p.ReorderThreshold)
		return p, err
	})
}

func queryRows[T any](ctx context.Context, db *sql.DB, q string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
