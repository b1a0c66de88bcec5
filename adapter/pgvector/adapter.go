package pgvector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Adapter searches a Postgres table with a pgvector embedding column. Rows are grouped into
// collections and the retriever index id names the collection.
type Adapter struct {
	db     Querier
	table  string
	logger *zap.Logger
}

type Option func(*Adapter)

func WithTable(table string) Option {
	return func(a *Adapter) {
		a.table = table
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const defaultTable = "documents"

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse db config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	return pool, nil
}

func New(db Querier, options ...Option) *Adapter {
	a := &Adapter{
		db:     db,
		table:  defaultTable,
		logger: zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	return a
}

const adapterName = "vector-index/pgvector"

func (a *Adapter) Name() string {
	return adapterName
}
