package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout   = 1 * time.Second
	queryTimeout  = 3 * time.Second
	schemaTimeout = 10 * time.Second
	pgUniqueCode  = "23505"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS products (
	pos         BIGSERIAL,
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	price       DOUBLE PRECISION NOT NULL,
	category    TEXT NOT NULL,
	in_stock    BOOLEAN NOT NULL
)`

const productColumns = `id, name, description, price, category, in_stock`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens a pgx-backed *sql.DB and checks that it answers.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := withTimeout(ctx, pingTimeout, db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the products table and seeds it when empty.
func (s *PostgresStore) EnsureSchema(ctx context.Context, seed []Product) error {
	return withTimeout(ctx, schemaTimeout, func(ctx context.Context) error {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		for _, p := range seed {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO products (`+productColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, p.ID, p.Name, p.Description, p.Price, p.Category, p.InStock); err != nil {
				return fmt.Errorf("seed %s: %w", p.ID, err)
			}
		}
		return tx.Commit()
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, s.db.PingContext)
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT `+productColumns+`
			FROM products
			WHERE ($1::text = '' OR category = $1::text)
			  AND ($2::text = '' OR strpos(lower(name), lower($2::text)) > 0)
			ORDER BY pos ASC
		`, f.Category, f.Search)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Product, error) {
	var p Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		p, err = scanProduct(s.db.QueryRowContext(ctx, `
			SELECT `+productColumns+`
			FROM products
			WHERE id = $1
		`, id))
		return err
	})
	return p, notFoundOnNoRows(err)
}

func (s *PostgresStore) Create(ctx context.Context, p Product) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, p.ID, p.Name, p.Description, p.Price, p.Category, p.InStock)

		if isUniqueViolation(err) {
			return ErrDuplicateID
		}
		return err
	})
}

func (s *PostgresStore) Update(ctx context.Context, id string, in ProductInput) (Product, error) {
	var p Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		p, err = scanProduct(s.db.QueryRowContext(ctx, `
			UPDATE products SET
				name        = COALESCE($2, name),
				description = COALESCE($3, description),
				price       = COALESCE($4, price),
				category    = COALESCE($5, category),
				in_stock    = COALESCE($6, in_stock)
			WHERE id = $1
			RETURNING `+productColumns,
			id, nullable(in.Name), nullable(in.Description), nullable(in.Price),
			nullable(in.Category), nullable(in.InStock),
		))
		return err
	})
	return p, notFoundOnNoRows(err)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (Product, error) {
	var p Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		p, err = scanProduct(s.db.QueryRowContext(ctx, `
			DELETE FROM products
			WHERE id = $1
			RETURNING `+productColumns,
			id,
		))
		return err
	})
	return p, notFoundOnNoRows(err)
}

func (s *PostgresStore) CountByCategory(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT category, COUNT(*)
			FROM products
			GROUP BY category
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				category string
				n        int
			)
			if err := rows.Scan(&category, &n); err != nil {
				return err
			}
			counts[category] = n
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.InStock)
	return p, err
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func notFoundOnNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}
