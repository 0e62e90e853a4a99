package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS volunteers (id INTEGER PRIMARY KEY, email TEXT UNIQUE, is_verify INTEGER NOT NULL DEFAULT 0)`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM volunteers`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO volunteers(email) VALUES ('a@b.com')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db), "must commit on success")
}

func TestWithTx_ReadThenWriteInOneTx(t *testing.T) {
	db := setupDB(t)
	_, err := db.Exec(`INSERT INTO volunteers(email) VALUES ('a@b.com')`)
	require.NoError(t, err)

	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		var id int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM volunteers WHERE email = ?`, "a@b.com").Scan(&id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE volunteers SET is_verify = 1 WHERE id = ?`, id)
		return err
	})
	require.NoError(t, err)

	var verified bool
	require.NoError(t, db.QueryRow(`SELECT is_verify FROM volunteers WHERE email = 'a@b.com'`).Scan(&verified))
	require.True(t, verified)
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO volunteers(email) VALUES ('fail@b.com')`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.Error(t, err)

	require.Equal(t, 0, countRows(t, db), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnConstraintError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO volunteers(email) VALUES ('dup@b.com')`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO volunteers(email) VALUES ('dup@b.com')`)
		return err
	})
	require.Error(t, err)
	require.Equal(t, 0, countRows(t, db))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countRows(t, db), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO volunteers(email) VALUES ('panic@b.com')`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err, "begin should fail when DB is closed")
}

func TestPinger_SatisfiedBySQLDB(t *testing.T) {
	db := setupDB(t)
	var p Pinger = db
	require.NoError(t, p.PingContext(context.Background()))
}
