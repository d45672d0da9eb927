package grpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ReusesAndRecreates(t *testing.T) {
	pool := NewPool()

	conn, err := pool.GetConnection("passthrough:///ledger-a")
	require.NoError(t, err)
	again, err := pool.GetConnection("passthrough:///ledger-a")
	require.NoError(t, err)
	assert.Same(t, conn, again)

	other, err := pool.GetConnection("passthrough:///ledger-b")
	require.NoError(t, err)
	assert.NotSame(t, conn, other)

	// 已關閉的連線不再被回傳
	require.NoError(t, conn.Close())
	fresh, err := pool.GetConnection("passthrough:///ledger-a")
	require.NoError(t, err)
	assert.NotSame(t, conn, fresh)

	require.NoError(t, pool.Close())
}
