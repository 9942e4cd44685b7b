package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/orderflow/internal/domain/buyer"
	"github.com/example/orderflow/internal/domain/merchant"
	"github.com/example/orderflow/internal/domain/order"
	"github.com/example/orderflow/internal/domain/payment"
	"github.com/example/orderflow/internal/domain/product"
)

// ConnectPostgres opens a pooled connection and verifies it.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// Migrate creates the tables a service needs. Each binary calls it with its
// own subset so services never share schema they do not own.
func Migrate(db *sql.DB, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

const (
	SchemaOrders = `CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		merchant_id TEXT NOT NULL,
		buyer_id TEXT NOT NULL,
		card_number TEXT NOT NULL,
		expiration_month INT NOT NULL,
		expiration_year INT NOT NULL,
		cvc INT NOT NULL,
		discount DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

	SchemaPayments = `CREATE TABLE IF NOT EXISTS payments (
		order_id TEXT PRIMARY KEY,
		success BOOLEAN NOT NULL,
		reason TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

	SchemaProducts = `CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		merchant_id TEXT NOT NULL,
		product_name TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		quantity INT NOT NULL,
		reserved INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (reserved >= 0 AND reserved <= quantity)
	)`

	SchemaBuyers = `CREATE TABLE IF NOT EXISTS buyers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		ssn TEXT NOT NULL,
		email TEXT NOT NULL,
		phone_number TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

	SchemaMerchants = `CREATE TABLE IF NOT EXISTS merchants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		ssn TEXT NOT NULL,
		email TEXT NOT NULL,
		phone_number TEXT NOT NULL,
		allows_discount BOOLEAN NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
)

// PostgresOrderStore persists orders in PostgreSQL.
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

func (s *PostgresOrderStore) Insert(ctx context.Context, o *order.Order) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (id, product_id, merchant_id, buyer_id, card_number, expiration_month, expiration_year, cvc, discount, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.ProductID, o.MerchantID, o.BuyerID,
		o.CreditCard.CardNumber, o.CreditCard.ExpirationMonth, o.CreditCard.ExpirationYear, o.CreditCard.CVC,
		o.Discount, o.CreatedAt)
	return err
}

func (s *PostgresOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	err := s.db.QueryRowContext(ctx,
		`SELECT id, product_id, merchant_id, buyer_id, card_number, expiration_month, expiration_year, cvc, discount, created_at
		 FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.ProductID, &o.MerchantID, &o.BuyerID,
			&o.CreditCard.CardNumber, &o.CreditCard.ExpirationMonth, &o.CreditCard.ExpirationYear, &o.CreditCard.CVC,
			&o.Discount, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// PostgresPaymentStore persists payment records in PostgreSQL. The primary
// key on order_id makes the insert naturally conditional.
type PostgresPaymentStore struct {
	db *sql.DB
}

func NewPostgresPaymentStore(db *sql.DB) *PostgresPaymentStore {
	return &PostgresPaymentStore{db: db}
}

func (s *PostgresPaymentStore) Insert(ctx context.Context, rec *payment.Record) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (order_id, success, reason, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (order_id) DO NOTHING`,
		rec.OrderID, rec.Success, rec.Reason, rec.CreatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicatePayment
	}
	return nil
}

func (s *PostgresPaymentStore) GetByOrderID(ctx context.Context, orderID string) (*payment.Record, error) {
	var rec payment.Record
	err := s.db.QueryRowContext(ctx,
		`SELECT order_id, success, reason, created_at FROM payments WHERE order_id = $1`, orderID).
		Scan(&rec.OrderID, &rec.Success, &rec.Reason, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// PostgresProductStore persists products in PostgreSQL. Every mutation is a
// single conditional UPDATE so the availability check and the counter write
// commit atomically under concurrent callers.
type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) Insert(ctx context.Context, p *product.Product) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, merchant_id, product_name, price, quantity, reserved, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.MerchantID, p.Name, p.Price, p.Quantity, p.Reserved, p.CreatedAt)
	return err
}

func (s *PostgresProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	err := s.db.QueryRowContext(ctx,
		`SELECT id, merchant_id, product_name, price, quantity, reserved, created_at
		 FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.MerchantID, &p.Name, &p.Price, &p.Quantity, &p.Reserved, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, product.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresProductStore) Reserve(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET reserved = reserved + 1 WHERE id = $1 AND quantity > reserved`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Distinguish a missing product from an exhausted one.
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return product.ErrProductNotFound
	}
	return product.ErrSoldOut
}

func (s *PostgresProductStore) Consume(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE products SET quantity = quantity - 1, reserved = reserved - 1
		 WHERE id = $1 AND reserved > 0`, id)
	return err
}

func (s *PostgresProductStore) Release(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE products SET reserved = reserved - 1 WHERE id = $1 AND reserved > 0`, id)
	return err
}

// PostgresBuyerStore persists buyer records.
type PostgresBuyerStore struct {
	db *sql.DB
}

func NewPostgresBuyerStore(db *sql.DB) *PostgresBuyerStore {
	return &PostgresBuyerStore{db: db}
}

func (s *PostgresBuyerStore) Insert(ctx context.Context, b *buyer.Buyer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO buyers (id, name, ssn, email, phone_number, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.Name, b.SSN, b.Email, b.PhoneNumber, b.CreatedAt)
	return err
}

func (s *PostgresBuyerStore) Get(ctx context.Context, id string) (*buyer.Buyer, error) {
	var b buyer.Buyer
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, ssn, email, phone_number, created_at FROM buyers WHERE id = $1`, id).
		Scan(&b.ID, &b.Name, &b.SSN, &b.Email, &b.PhoneNumber, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, buyer.ErrBuyerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// PostgresMerchantStore persists merchant records.
type PostgresMerchantStore struct {
	db *sql.DB
}

func NewPostgresMerchantStore(db *sql.DB) *PostgresMerchantStore {
	return &PostgresMerchantStore{db: db}
}

func (s *PostgresMerchantStore) Insert(ctx context.Context, m *merchant.Merchant) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO merchants (id, name, ssn, email, phone_number, allows_discount, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.Name, m.SSN, m.Email, m.PhoneNumber, m.AllowsDiscount, m.CreatedAt)
	return err
}

func (s *PostgresMerchantStore) Get(ctx context.Context, id string) (*merchant.Merchant, error) {
	var m merchant.Merchant
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, ssn, email, phone_number, allows_discount, created_at FROM merchants WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.SSN, &m.Email, &m.PhoneNumber, &m.AllowsDiscount, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, merchant.ErrMerchantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
