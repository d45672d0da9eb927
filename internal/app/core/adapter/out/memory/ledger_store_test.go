package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
)

func TestLedgerStore_WriteGetTransaction(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()

	tx1 := domain.Transaction{Type: domain.TransactionTypeDeposit, Client: 10, Tx: 1, Amount: decimal.RequireFromString("100.0")}
	tx2 := domain.Transaction{Type: domain.TransactionTypeDeposit, Client: 12, Tx: 5, Amount: decimal.RequireFromString("90.0")}

	for _, uid := range []domain.TxUID{{Client: 10, Tx: 1}, {Client: 12, Tx: 5}, {Client: 10, Tx: 7}} {
		_, ok, err := store.GetTransaction(ctx, uid)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	require.NoError(t, store.PutTransaction(ctx, tx1))
	got, ok, err := store.GetTransaction(ctx, domain.TxUID{Client: 10, Tx: 1})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tx1, got)

	// 同一個 tx id 不同 client 是不同交易
	_, ok, err = store.GetTransaction(ctx, domain.TxUID{Client: 12, Tx: 1})
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.PutTransaction(ctx, tx2))
	tx2New := domain.Transaction{Type: domain.TransactionTypeWithdrawal, Client: 12, Tx: 5, Amount: decimal.RequireFromString("20.0")}
	require.NoError(t, store.PutTransaction(ctx, tx2New))

	got, ok, err = store.GetTransaction(ctx, domain.TxUID{Client: 12, Tx: 5})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tx2New, got)

	got, ok, err = store.GetTransaction(ctx, domain.TxUID{Client: 10, Tx: 1})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tx1, got)
}

func TestLedgerStore_AccountsAreCopied(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()

	_, ok, err := store.GetAccount(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	acc := domain.NewAccount()
	acc.ApplyDeposit(decimal.NewFromInt(5))
	require.NoError(t, store.PutAccount(ctx, 3, acc))

	// 修改呼叫端的物件不影響已儲存的快照
	acc.ApplyDeposit(decimal.NewFromInt(5))
	acc.Disputes[9] = struct{}{}

	stored, ok, err := store.GetAccount(ctx, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, stored.Available.Equal(decimal.NewFromInt(5)))
	assert.False(t, stored.IsDisputed(9))

	stored.ApplyDeposit(decimal.NewFromInt(1))
	again, _, err := store.GetAccount(ctx, 3)
	require.NoError(t, err)
	assert.True(t, again.Available.Equal(decimal.NewFromInt(5)))
}

func TestLedgerStore_AllAccounts(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()

	views, err := store.AllAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, views)

	for i := 1; i <= 3; i++ {
		acc := domain.NewAccount()
		acc.ApplyDeposit(decimal.NewFromInt(int64(i)))
		require.NoError(t, store.PutAccount(ctx, domain.ClientID(i), acc))
	}

	views, err = store.AllAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)
	for _, v := range views {
		assert.True(t, v.Available.Equal(decimal.NewFromInt(int64(v.Client))))
		assert.True(t, v.Total.Equal(v.Available))
	}
}

func TestLedgerStore_Closed(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()
	require.NoError(t, store.Close())

	_, _, err := store.GetAccount(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, domain.ErrStoreClosed)

	err = store.PutAccount(ctx, 1, domain.NewAccount())
	assert.ErrorIs(t, err, domain.ErrStorage)

	_, _, err = store.GetTransaction(ctx, domain.TxUID{Client: 1, Tx: 1})
	assert.ErrorIs(t, err, domain.ErrStorage)

	err = store.PutTransaction(ctx, domain.Transaction{Type: domain.TransactionTypeDeposit, Client: 1, Tx: 1})
	assert.ErrorIs(t, err, domain.ErrStorage)

	_, err = store.AllAccounts(ctx)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestLedgerStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(id domain.ClientID) {
			defer wg.Done()
			acc := domain.NewAccount()
			acc.ApplyDeposit(decimal.NewFromInt(1))
			assert.NoError(t, store.PutAccount(ctx, id, acc))
		}(domain.ClientID(i))
		go func() {
			defer wg.Done()
			_, err := store.AllAccounts(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	views, err := store.AllAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 50)
}
