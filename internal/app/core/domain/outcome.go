package domain

// Outcome 單筆交易的處理結果
//
// 違反業務規則不算錯誤：交易會被忽略 (no-op)，並以 Outcome 說明原因。
type Outcome uint8

const (
	OutcomeApplied Outcome = iota
	// 帳戶已凍結，拒絕所有後續交易
	OutcomeFrozenAccount
	// 可用餘額不足
	OutcomeInsufficientFunds
	// 參照的交易不存在
	OutcomeUnknownReference
	// 參照的交易不是存款
	OutcomeNotADeposit
	// 交易已在爭議中
	OutcomeAlreadyDisputed
	// 交易不在爭議中，無法 resolve/chargeback
	OutcomeNotDisputed
)

var outcomeNames = [...]string{
	OutcomeApplied:           "applied",
	OutcomeFrozenAccount:     "frozen_account",
	OutcomeInsufficientFunds: "insufficient_funds",
	OutcomeUnknownReference:  "unknown_reference",
	OutcomeNotADeposit:       "not_a_deposit",
	OutcomeAlreadyDisputed:   "already_disputed",
	OutcomeNotDisputed:       "not_disputed",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Applied 交易是否實際生效
func (o Outcome) Applied() bool {
	return o == OutcomeApplied
}
