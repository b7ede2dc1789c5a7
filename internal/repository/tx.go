package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager runs a function inside a database transaction. Repositories
// called with the context it provides join the same transaction, so a reward
// flow (submission + progress + user XP + leaderboard) commits or rolls back
// as one unit. The managed-store original relied on serialized mutations for
// this; Postgres does not give that guarantee, hence the explicit wrap.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// NewTxManager constructs a gorm-backed transaction manager.
func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

type txManager struct {
	db *gorm.DB
}

func (m *txManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFor returns the transaction bound to ctx when present, or the
// repository's own handle otherwise.
func dbFor(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback.WithContext(ctx)
}
