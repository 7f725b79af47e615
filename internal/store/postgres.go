package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rahim-jr/stripe-payment-tester-repo/internal/models"
)

const uniqueViolation = "23505"

// Postgres implements Store on top of a pgx connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres initializes a new database connection pool.
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

// Close closes the database connection pool.
func (s *Postgres) Close() {
	s.Pool.Close()
}

// CreateUser inserts a new user
func (s *Postgres) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user := &models.User{}
	err := s.Pool.QueryRow(ctx,
		"INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id, username, password_hash, created_at",
		username, passwordHash).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username
func (s *Postgres) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := s.Pool.QueryRow(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = $1",
		username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by id
func (s *Postgres) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := s.Pool.QueryRow(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE id = $1",
		id).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CreateProduct inserts a new product
func (s *Postgres) CreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	created := &models.Product{}
	err := s.Pool.QueryRow(ctx,
		"INSERT INTO products (name, price) VALUES ($1, $2) RETURNING id, name, price, created_at",
		product.Name, product.Price).Scan(&created.ID, &created.Name, &created.Price, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

// GetProducts retrieves all products
func (s *Postgres) GetProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT id, name, price, created_at FROM products ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProductByID retrieves a product by id
func (s *Postgres) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	p := &models.Product{}
	err := s.Pool.QueryRow(ctx,
		"SELECT id, name, price, created_at FROM products WHERE id = $1",
		id).Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// CreateOrder inserts a new order
func (s *Postgres) CreateOrder(ctx context.Context, order models.Order) (*models.Order, error) {
	created := &models.Order{}
	err := s.Pool.QueryRow(ctx,
		"INSERT INTO orders (user_id, product_id, amount, status) VALUES ($1, $2, $3, $4) RETURNING id, user_id, product_id, amount, status, created_at",
		order.UserID, order.ProductID, order.Amount, order.Status).Scan(
		&created.ID, &created.UserID, &created.ProductID, &created.Amount, &created.Status, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return created, nil
}

// GetOrderByID retrieves an order by id
func (s *Postgres) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	o := &models.Order{}
	err := s.Pool.QueryRow(ctx,
		"SELECT id, user_id, product_id, amount, status, created_at FROM orders WHERE id = $1",
		id).Scan(&o.ID, &o.UserID, &o.ProductID, &o.Amount, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// GetUserOrders retrieves all orders for a user
func (s *Postgres) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT id, user_id, product_id, amount, status, created_at FROM orders WHERE user_id = $1 ORDER BY created_at ASC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.ProductID, &o.Amount, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkOrderPaid records the webhook event id and transitions the order
// to paid in one transaction. The insert-once on processed_events makes
// redelivered events no-ops regardless of how often Stripe retries.
func (s *Postgres) MarkOrderPaid(ctx context.Context, orderID, eventID string) (bool, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		"INSERT INTO processed_events (event_id, order_id) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to record event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already processed.
		return false, nil
	}

	tag, err = tx.Exec(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2",
		models.OrderStatusPaid, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}
