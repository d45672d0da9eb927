package domain

import "fmt"

// TransactionType 交易類型
// 為了節省記憶體，使用 uint8
type TransactionType uint8

const (
	// 存款
	TransactionTypeDeposit TransactionType = iota + 1
	// 提款
	TransactionTypeWithdrawal
	// 爭議，凍結一筆存款的金額
	TransactionTypeDispute
	// 解除爭議，金額回到可用餘額
	TransactionTypeResolve
	// 退單，扣除被爭議的金額並凍結帳戶
	TransactionTypeChargeback
)

var transactionTypeNames = map[TransactionType]string{
	TransactionTypeDeposit:    "deposit",
	TransactionTypeWithdrawal: "withdrawal",
	TransactionTypeDispute:    "dispute",
	TransactionTypeResolve:    "resolve",
	TransactionTypeChargeback: "chargeback",
}

func (t TransactionType) String() string {
	if name, ok := transactionTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TransactionType(%d)", uint8(t))
}

// ParseTransactionType 由小寫標籤取得交易類型
func ParseTransactionType(tag string) (TransactionType, error) {
	for t, name := range transactionTypeNames {
		if name == tag {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTransactionType, tag)
}

// Transaction 交易
//
// Deposit/Withdrawal 為「已記錄」交易，會寫入 LedgerStore 以供之後的爭議查詢；
// Dispute/Resolve/Chargeback 只透過 (Client, Tx) 參照既有交易，本身不會被保存，Amount 為零值。
type Transaction struct {
	Amount Amount
	Tx     TxID
	Client ClientID
	Type   TransactionType
}

// ParseTransaction 由已解析的欄位組裝 Transaction
//
// 參數:
//
//	tag: 交易類型標籤 (deposit, withdrawal, dispute, resolve, chargeback)
//	client: 客戶 ID
//	tx: 交易 ID
//	amount: 金額，只有 deposit/withdrawal 需要，nil 代表欄位不存在
//
// 回傳:
//
//	Transaction: 交易
//	error: 標籤未知或缺少金額
//
// 負數金額照常接受，交給帳戶規則處理 (帳戶信任上游資料)
func ParseTransaction(tag string, client ClientID, tx TxID, amount *Amount) (Transaction, error) {
	txType, err := ParseTransactionType(tag)
	if err != nil {
		return Transaction{}, err
	}
	tran := Transaction{
		Type:   txType,
		Client: client,
		Tx:     tx,
	}
	if !tran.IsRecorded() {
		return tran, nil
	}
	if amount == nil {
		return Transaction{}, fmt.Errorf("%w for %s %d", ErrMissingAmount, txType, tx)
	}
	tran.Amount = *amount
	return tran, nil
}

// UID 回傳交易主鍵；對 meta 交易而言即為被參照交易的主鍵
func (t Transaction) UID() TxUID {
	return TxUID{Client: t.Client, Tx: t.Tx}
}

// IsRecorded 是否為需要保存的交易 (Deposit/Withdrawal)
func (t Transaction) IsRecorded() bool {
	return t.Type == TransactionTypeDeposit || t.Type == TransactionTypeWithdrawal
}
