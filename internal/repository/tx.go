package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lodgical/service-reservation/internal/domain"
	"gorm.io/gorm"
)

type txKey struct{}

// TxManager runs functions inside one database transaction, carrying the
// transaction handle through the context so every repository call inside the
// closure joins the same transaction.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a TxManager over the given connection.
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// WithTx executes fn inside a transaction. A nested call joins the transaction
// already carried by the context instead of opening a second one.
func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// LockResource serializes writers on one resource for the remainder of the
// transaction. The availability check and the calendar-block write that follow
// it are thereby atomic per resource.
func (m *TxManager) LockResource(ctx context.Context, resourceID uuid.UUID) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("resource lock requested outside a transaction")
	}
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?::text))", resourceID.String()).Error; err != nil {
		return fmt.Errorf("failed to lock resource %s: %w", resourceID, err)
	}
	return nil
}

func txFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// dbOr returns the transaction carried by the context, or the repository's own
// connection when called outside a transaction.
func dbOr(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return fallback.WithContext(ctx)
}

const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

// mapConstraintError converts Postgres exclusion/unique violations into
// StorageConflict so callers can distinguish a lost race from a logical
// impossibility and decide whether to retry.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == pgExclusionViolation || pgErr.Code == pgUniqueViolation) {
		return domain.NewStorageConflictError("conflicting reservation committed concurrently")
	}
	return err
}
