package domain

import "github.com/shopspring/decimal"

// AccountStatus 帳戶狀態
type AccountStatus uint8

const (
	AccountStatusLive AccountStatus = iota
	// 凍結為終止狀態，沒有任何操作能解凍
	AccountStatusFrozen
)

// Account 單一客戶的帳戶狀態
//
// 不變量: Held 永遠等於 Disputes 中所有存款金額的總和。
// 可用餘額與凍結金額都允許為負，帳戶信任上游資料。
type Account struct {
	Available Amount
	Held      Amount
	Status    AccountStatus
	// 尚未解決的爭議交易
	Disputes map[TxID]struct{}
}

// AccountView 對外輸出用的帳戶快照
type AccountView struct {
	Client    ClientID `json:"client"`
	Available Amount   `json:"available"`
	Held      Amount   `json:"held"`
	Total     Amount   `json:"total"`
	Locked    bool     `json:"locked"`
}

// NewAccount 建立空帳戶
func NewAccount() *Account {
	return &Account{
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Status:    AccountStatusLive,
		Disputes:  make(map[TxID]struct{}),
	}
}

// Clone 深拷貝，避免呼叫端與儲存層共用 Disputes map
func (a *Account) Clone() *Account {
	disputes := make(map[TxID]struct{}, len(a.Disputes))
	for id := range a.Disputes {
		disputes[id] = struct{}{}
	}
	return &Account{
		Available: a.Available,
		Held:      a.Held,
		Status:    a.Status,
		Disputes:  disputes,
	}
}

func (a *Account) IsFrozen() bool {
	return a.Status == AccountStatusFrozen
}

// IsDisputed 交易是否正在爭議中
func (a *Account) IsDisputed(id TxID) bool {
	_, ok := a.Disputes[id]
	return ok
}

// ApplyDeposit 存款
func (a *Account) ApplyDeposit(amount Amount) {
	a.Available = a.Available.Add(amount)
}

// ApplyWithdrawal 提款，可用餘額不足時忽略此筆提款
func (a *Account) ApplyWithdrawal(amount Amount) Outcome {
	if a.Available.LessThan(amount) {
		return OutcomeInsufficientFunds
	}
	a.Available = a.Available.Sub(amount)
	return OutcomeApplied
}

// ApplyDispute 將存款金額由可用餘額移至凍結金額
// 前置條件 (由 Processor 保證): deposit 存在且為存款
func (a *Account) ApplyDispute(deposit Transaction) {
	a.Available = a.Available.Sub(deposit.Amount)
	a.Held = a.Held.Add(deposit.Amount)
	a.disputes()[deposit.Tx] = struct{}{}
}

// ApplyResolve 解除爭議，凍結金額回到可用餘額
// 前置條件: deposit.Tx 在 Disputes 中
func (a *Account) ApplyResolve(deposit Transaction) {
	a.Held = a.Held.Sub(deposit.Amount)
	a.Available = a.Available.Add(deposit.Amount)
	delete(a.Disputes, deposit.Tx)
}

// ApplyChargeback 退單，扣除凍結金額並凍結帳戶
// 前置條件: deposit.Tx 在 Disputes 中
func (a *Account) ApplyChargeback(deposit Transaction) {
	a.Held = a.Held.Sub(deposit.Amount)
	delete(a.Disputes, deposit.Tx)
	a.Status = AccountStatusFrozen
}

// View 產生唯讀快照，Total = Available + Held
func (a *Account) View(client ClientID) AccountView {
	return AccountView{
		Client:    client,
		Available: a.Available,
		Held:      a.Held,
		Total:     a.Available.Add(a.Held),
		Locked:    a.IsFrozen(),
	}
}

func (a *Account) disputes() map[TxID]struct{} {
	if a.Disputes == nil {
		a.Disputes = make(map[TxID]struct{})
	}
	return a.Disputes
}
