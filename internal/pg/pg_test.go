package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManager_Begin(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		fn        func(conn *Conn) TransactionalFn
		expectErr bool
	}{
		{
			name: "commits when fn succeeds",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE ordered_items`).WithArgs(1).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectCommit()
			},
			fn: func(conn *Conn) TransactionalFn {
				return func(ctx context.Context) error {
					_, err := conn.Exec(ctx, `UPDATE ordered_items SET item_is_paid = TRUE WHERE id = $1`, 1)
					return err
				}
			},
		},
		{
			name: "rolls back when fn fails",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(conn *Conn) TransactionalFn {
				return func(ctx context.Context) error {
					return errors.New("boom")
				}
			},
			expectErr: true,
		},
		{
			name: "begin error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin().WillReturnError(errors.New("no connection"))
			},
			fn: func(conn *Conn) TransactionalFn {
				return func(ctx context.Context) error { return nil }
			},
			expectErr: true,
		},
		{
			name: "nested begin joins outer transaction",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO account_transactions`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
				mock.ExpectCommit()
			},
			fn: func(conn *Conn) TransactionalFn {
				return func(ctx context.Context) error {
					return NewTXManager(nil).Begin(ctx, func(ctx context.Context) error {
						_, err := conn.Exec(ctx, `INSERT INTO account_transactions DEFAULT VALUES`)
						return err
					})
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)
			manager := NewTXManager(mock)
			conn := New(mock)

			err = manager.Begin(context.Background(), tt.fn(conn))
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConn_WithoutTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)`).
		WithArgs(7).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow("10.00"))

	var sum string
	err = New(mock).QueryRow(context.Background(), `SELECT COALESCE(SUM(amount), 0)::text FROM account_transactions WHERE user_id = $1`, 7).Scan(&sum)

	require.NoError(t, err)
	assert.Equal(t, "10.00", sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}
