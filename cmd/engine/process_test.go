package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
)

func TestProcessStream(t *testing.T) {
	input := `type, client, tx, amount
deposit, 1, 1, 1.0
deposit, 2, 2, 2.0
deposit, 1, 3, 2.0
withdrawal, 1, 4, 1.5
withdrawal, 2, 5, 3.0
`
	var out bytes.Buffer
	processor := usecase.NewProcessor(memory.NewLedgerStore())
	err := processStream(context.Background(), processor, strings.NewReader(input), &out, zap.NewNop())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "client,available,held,total,locked", lines[0])
	assert.Equal(t, "1,1.5,0,1.5,false", lines[1])
	assert.Equal(t, "2,2.0,0,2.0,false", lines[2])
}

func TestProcessStream_NegativeAmountsAreProcessed(t *testing.T) {
	input := "type,client,tx,amount\ndeposit,1,1,5.00\ndeposit,1,2,-2.00\nwithdrawal,1,3,-1.00\n"
	var out bytes.Buffer
	processor := usecase.NewProcessor(memory.NewLedgerStore())
	err := processStream(context.Background(), processor, strings.NewReader(input), &out, zap.NewNop())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1,4.00,0,4.00,false", lines[1])
}

func TestProcessStream_ParseErrorAborts(t *testing.T) {
	input := "type,client,tx,amount\ndeposit,1,1,1.0\ntransfer,1,2,1.0\n"
	var out bytes.Buffer
	processor := usecase.NewProcessor(memory.NewLedgerStore())
	err := processStream(context.Background(), processor, strings.NewReader(input), &out, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse transactions")
	assert.Empty(t, out.String())
}

func TestProcessStream_StorageErrorAborts(t *testing.T) {
	store := memory.NewLedgerStore()
	require.NoError(t, store.Close())
	var out bytes.Buffer
	processor := usecase.NewProcessor(store)
	err := processStream(context.Background(), processor, strings.NewReader("type,client,tx,amount\ndeposit,1,1,1\n"), &out, zap.NewNop())
	require.Error(t, err)
	assert.Empty(t, out.String())
}
