package memory

import (
	"context"
	"sync"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
)

// LedgerStore 是一個使用 RWMutex 保護兩個 Map 的帳本儲存層
//
// 結構:
//
//	accounts: 帳戶資料 Map，由 accountsMu 保護
//	transactions: 已記錄交易 Map，由 transactionsMu 保護
//	closed: 關閉後所有存取回傳 ErrStoreClosed
//
// 寫入與讀取都做深拷貝，呼叫端拿到的帳戶不會與 Map 內的資料共用記憶體。
type LedgerStore struct {
	accounts       map[domain.ClientID]*domain.Account
	accountsMu     sync.RWMutex
	transactions   map[domain.TxUID]domain.Transaction
	transactionsMu sync.RWMutex

	closedMu sync.RWMutex
	closed   bool
}

// NewLedgerStore 建立一個空的 LedgerStore 實例
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		accounts:     make(map[domain.ClientID]*domain.Account),
		transactions: make(map[domain.TxUID]domain.Transaction),
	}
}

// GetTransaction 取得已記錄的交易
//
// 參數:
//
//	ctx: 上下文
//	uid: 交易主鍵 (client, tx)
//
// 回傳:
//
//	domain.Transaction: 交易
//	bool: 是否存在
//	error: 儲存層錯誤
func (s *LedgerStore) GetTransaction(ctx context.Context, uid domain.TxUID) (domain.Transaction, bool, error) {
	if err := s.check("get_transaction"); err != nil {
		return domain.Transaction{}, false, err
	}
	s.transactionsMu.RLock()
	defer s.transactionsMu.RUnlock()
	tran, ok := s.transactions[uid]
	return tran, ok, nil
}

// PutTransaction 寫入交易，相同主鍵直接覆蓋
func (s *LedgerStore) PutTransaction(ctx context.Context, tran domain.Transaction) error {
	if err := s.check("put_transaction"); err != nil {
		return err
	}
	s.transactionsMu.Lock()
	defer s.transactionsMu.Unlock()
	s.transactions[tran.UID()] = tran
	return nil
}

// GetAccount 取得帳戶快照 (拷貝)
func (s *LedgerStore) GetAccount(ctx context.Context, client domain.ClientID) (*domain.Account, bool, error) {
	if err := s.check("get_account"); err != nil {
		return nil, false, err
	}
	s.accountsMu.RLock()
	defer s.accountsMu.RUnlock()
	account, ok := s.accounts[client]
	if !ok {
		return nil, false, nil
	}
	return account.Clone(), true, nil
}

// PutAccount 覆蓋帳戶快照 (拷貝)
func (s *LedgerStore) PutAccount(ctx context.Context, client domain.ClientID, account *domain.Account) error {
	if err := s.check("put_account"); err != nil {
		return err
	}
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	s.accounts[client] = account.Clone()
	return nil
}

// AllAccounts 在同一把讀鎖下列出所有帳戶快照，順序不保證
func (s *LedgerStore) AllAccounts(ctx context.Context) ([]domain.AccountView, error) {
	if err := s.check("all_accounts"); err != nil {
		return nil, err
	}
	s.accountsMu.RLock()
	defer s.accountsMu.RUnlock()
	views := make([]domain.AccountView, 0, len(s.accounts))
	for client, account := range s.accounts {
		views = append(views, account.View(client))
	}
	return views, nil
}

// Close 關閉儲存層，之後的存取都會失敗
func (s *LedgerStore) Close() error {
	s.closedMu.Lock()
	defer s.closedMu.Unlock()
	s.closed = true
	return nil
}

func (s *LedgerStore) check(op string) error {
	s.closedMu.RLock()
	defer s.closedMu.RUnlock()
	if s.closed {
		return domain.NewStorageError(op, domain.ErrStoreClosed)
	}
	return nil
}

var _ usecase.LedgerStore = (*LedgerStore)(nil)
