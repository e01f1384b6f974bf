package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUnitOfWork_DoCommitAndRollback(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}
	insert := func(ctx context.Context) error {
		return GetDB(ctx, db).Exec("INSERT INTO provider_contacts(provider_id,email,display_name,updated_at) VALUES (?,?,?,CURRENT_TIMESTAMP)",
			uuid.New().String(), "a@example.com", "A").Error
	}

	require.NoError(t, u.Do(context.Background(), insert))

	var count int64
	require.NoError(t, db.Table("provider_contacts").Count(&count).Error)
	require.Equal(t, int64(1), count)

	err := u.Do(context.Background(), func(ctx context.Context) error {
		if err := insert(ctx); err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	require.Error(t, err)

	require.NoError(t, db.Table("provider_contacts").Count(&count).Error)
	require.Equal(t, int64(1), count, "second insert must be rolled back")
}

func TestUnitOfWork_NestedDoSharesTransaction(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}

	err := u.Do(context.Background(), func(outer context.Context) error {
		outerTx := outer.Value(txKey).(*gorm.DB)
		return u.Do(outer, func(inner context.Context) error {
			require.Same(t, outerTx, inner.Value(txKey).(*gorm.DB))
			return nil
		})
	})
	require.NoError(t, err)
}

func TestUnitOfWork_WithLockAndGetDB(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}

	ctx := u.WithLock(context.Background())
	locked, _ := ctx.Value(lockKey).(bool)
	require.True(t, locked)
	require.NotNil(t, lockedDB(ctx, db))
	require.NotNil(t, u.GetDB(context.Background()))

	tx := db.Begin()
	defer tx.Rollback()
	txCtx := context.WithValue(context.Background(), txKey, tx)
	require.Equal(t, tx.Statement.ConnPool, u.GetDB(txCtx).Statement.ConnPool)
}
