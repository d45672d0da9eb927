package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) Amount {
	return decimal.RequireFromString(s)
}

func deposit(tx TxID, amount string) Transaction {
	return Transaction{Type: TransactionTypeDeposit, Client: 1, Tx: tx, Amount: dec(amount)}
}

func TestAccount_DepositWithdrawal(t *testing.T) {
	acc := NewAccount()
	acc.ApplyDeposit(dec("100.0"))
	assert.True(t, acc.Available.Equal(dec("100")))

	assert.Equal(t, OutcomeApplied, acc.ApplyWithdrawal(dec("90.0")))
	assert.True(t, acc.Available.Equal(dec("10")))

	assert.Equal(t, OutcomeInsufficientFunds, acc.ApplyWithdrawal(dec("20.0")))
	assert.True(t, acc.Available.Equal(dec("10")), "insufficient withdrawal must leave available unchanged")

	// 剛好等於可用餘額可以提領
	assert.Equal(t, OutcomeApplied, acc.ApplyWithdrawal(dec("10")))
	assert.True(t, acc.Available.IsZero())
}

func TestAccount_DisputeResolve(t *testing.T) {
	acc := NewAccount()
	d := deposit(1, "100.0")
	acc.ApplyDeposit(d.Amount)

	acc.ApplyDispute(d)
	assert.True(t, acc.Available.IsZero())
	assert.True(t, acc.Held.Equal(dec("100")))
	assert.True(t, acc.IsDisputed(1))

	acc.ApplyResolve(d)
	assert.True(t, acc.Available.Equal(dec("100")))
	assert.True(t, acc.Held.IsZero())
	assert.False(t, acc.IsDisputed(1))
	assert.False(t, acc.IsFrozen())
}

func TestAccount_Chargeback(t *testing.T) {
	acc := NewAccount()
	d := deposit(1, "100.0")
	acc.ApplyDeposit(d.Amount)
	acc.ApplyDispute(d)
	acc.ApplyChargeback(d)

	assert.True(t, acc.Available.IsZero())
	assert.True(t, acc.Held.IsZero())
	assert.Empty(t, acc.Disputes)
	assert.True(t, acc.IsFrozen())
}

func TestAccount_NegativeBalancesAllowed(t *testing.T) {
	acc := NewAccount()
	d := deposit(1, "5")
	acc.ApplyDeposit(d.Amount)
	require.Equal(t, OutcomeApplied, acc.ApplyWithdrawal(dec("4")))

	acc.ApplyDispute(d)
	assert.True(t, acc.Available.Equal(dec("-4")))
	assert.True(t, acc.Held.Equal(dec("5")))
	assert.True(t, acc.View(1).Total.Equal(dec("1")))
}

func TestAccount_CloneIsDeep(t *testing.T) {
	acc := NewAccount()
	acc.ApplyDispute(deposit(7, "1"))

	clone := acc.Clone()
	clone.ApplyResolve(deposit(7, "1"))

	assert.True(t, acc.IsDisputed(7))
	assert.False(t, clone.IsDisputed(7))
}

func TestAccount_ZeroValueDispute(t *testing.T) {
	var acc Account
	acc.ApplyDispute(deposit(3, "2.5"))
	assert.True(t, acc.IsDisputed(3))
	assert.True(t, acc.Held.Equal(dec("2.5")))
}

func TestAccountView_JSONRoundTrip(t *testing.T) {
	acc := NewAccount()
	acc.ApplyDeposit(dec("2.3412"))
	acc.ApplyDispute(deposit(2, "0.00000000000000000001"))
	acc.ApplyChargeback(deposit(2, "0.00000000000000000001"))
	view := acc.View(42)

	raw, err := json.Marshal(view)
	require.NoError(t, err)

	var decoded AccountView
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, view.Client, decoded.Client)
	assert.Equal(t, view.Locked, decoded.Locked)
	assert.True(t, view.Available.Equal(decoded.Available), "available %s != %s", view.Available, decoded.Available)
	assert.True(t, view.Held.Equal(decoded.Held), "held %s != %s", view.Held, decoded.Held)
	assert.True(t, view.Total.Equal(decoded.Total), "total %s != %s", view.Total, decoded.Total)
}
