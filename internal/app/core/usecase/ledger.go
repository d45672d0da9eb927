package usecase

import (
	"context"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
)

// LedgerStore 是帳本儲存層的介面，只負責存取，不含業務邏輯
//
// 實作必須保證單一 key 的讀寫是原子的；所有存取失敗都以 *domain.StorageError 回傳。
type LedgerStore interface {
	// GetTransaction 取得已記錄的交易 (Deposit/Withdrawal)，不存在時 ok 為 false
	GetTransaction(ctx context.Context, uid domain.TxUID) (tran domain.Transaction, ok bool, err error)
	// PutTransaction 以 tran.UID() 為 key 寫入交易，覆蓋既有資料
	// 呼叫端保證 tran 為已記錄類型
	PutTransaction(ctx context.Context, tran domain.Transaction) error
	// GetAccount 取得帳戶快照，從未出現過的客戶 ok 為 false
	GetAccount(ctx context.Context, client domain.ClientID) (account *domain.Account, ok bool, err error)
	// PutAccount 覆蓋帳戶快照
	PutAccount(ctx context.Context, client domain.ClientID, account *domain.Account) error
	// AllAccounts 某一時間點所有帳戶的快照，順序不保證
	AllAccounts(ctx context.Context) ([]domain.AccountView, error)
}

// Observer 接收每筆交易的處理結果 (例如 metrics)
type Observer interface {
	Observe(tran domain.Transaction, outcome domain.Outcome)
}

// Journal 交易處理紀錄 (append-only)
type Journal interface {
	Write(v any) error
}
