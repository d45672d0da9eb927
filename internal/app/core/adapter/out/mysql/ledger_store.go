package mysql

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
	"github.com/JoeShih716/go-payments-engine/pkg/mysql"
)

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	ClientID  uint16          `gorm:"column:client_id;primaryKey;autoIncrement:false"`
	Available decimal.Decimal `gorm:"column:available;type:decimal(65,30);not null"`
	Held      decimal.Decimal `gorm:"column:held;type:decimal(65,30);not null"`
	// DECIMAL 欄位固定 30 位小數，另存原本的小數位數以便還原輸出格式
	AvailableScale int32  `gorm:"column:available_scale;not null"`
	HeldScale      int32  `gorm:"column:held_scale;not null"`
	Status         uint8  `gorm:"column:status;not null"`
	Disputes       string `gorm:"column:disputes;type:text;not null"` // JSON array of tx id
	UpdatedAt      int64  `gorm:"autoUpdateTime:milli"`
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

// sqlTransaction 對應資料庫的 ledger_transactions 表，主鍵為 (client_id, tx_id)
type sqlTransaction struct {
	ClientID    uint16          `gorm:"column:client_id;primaryKey;autoIncrement:false"`
	TxID        uint64          `gorm:"column:tx_id;primaryKey;autoIncrement:false"`
	Type        uint8           `gorm:"column:type;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(65,30);not null"`
	AmountScale int32           `gorm:"column:amount_scale;not null"`
	CreatedAt   int64           `gorm:"autoCreateTime:milli"`
}

func (*sqlTransaction) TableName() string {
	return "ledger_transactions"
}

// LedgerStore 以 MySQL 實作的 LedgerStore
// 每次寫入都是單一 row 的 upsert，相同主鍵直接覆蓋
type LedgerStore struct {
	client *mysql.Client
}

func NewLedgerStore(client *mysql.Client) *LedgerStore {
	return &LedgerStore{
		client: client,
	}
}

// AutoMigrate 建立或更新資料表
func (s *LedgerStore) AutoMigrate(ctx context.Context) error {
	if err := s.client.DB().WithContext(ctx).AutoMigrate(&sqlAccount{}, &sqlTransaction{}); err != nil {
		return domain.NewStorageError("migrate", err)
	}
	return nil
}

func (s *LedgerStore) GetTransaction(ctx context.Context, uid domain.TxUID) (domain.Transaction, bool, error) {
	var rows []sqlTransaction
	err := s.client.DB().WithContext(ctx).
		Where("client_id = ? AND tx_id = ?", uint16(uid.Client), uint64(uid.Tx)).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return domain.Transaction{}, false, domain.NewStorageError("get_transaction", err)
	}
	if len(rows) == 0 {
		return domain.Transaction{}, false, nil
	}
	row := rows[0]
	return domain.Transaction{
		Type:   domain.TransactionType(row.Type),
		Client: domain.ClientID(row.ClientID),
		Tx:     domain.TxID(row.TxID),
		Amount: withScale(row.Amount, row.AmountScale),
	}, true, nil
}

func (s *LedgerStore) PutTransaction(ctx context.Context, tran domain.Transaction) error {
	row := sqlTransaction{
		ClientID: uint16(tran.Client),
		TxID:     uint64(tran.Tx),
		Type:        uint8(tran.Type),
		Amount:      tran.Amount,
		AmountScale: scaleOf(tran.Amount),
	}
	err := s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return domain.NewStorageError("put_transaction", err)
	}
	return nil
}

func (s *LedgerStore) GetAccount(ctx context.Context, client domain.ClientID) (*domain.Account, bool, error) {
	var rows []sqlAccount
	err := s.client.DB().WithContext(ctx).
		Where("client_id = ?", uint16(client)).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, false, domain.NewStorageError("get_account", err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	account, err := toDomainAccount(rows[0])
	if err != nil {
		return nil, false, domain.NewStorageError("get_account", err)
	}
	return account, true, nil
}

func (s *LedgerStore) PutAccount(ctx context.Context, client domain.ClientID, account *domain.Account) error {
	row, err := toSQLAccount(client, account)
	if err != nil {
		return domain.NewStorageError("put_account", err)
	}
	err = s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return domain.NewStorageError("put_account", err)
	}
	return nil
}

// AllAccounts 以單一 SELECT 取得所有帳戶
func (s *LedgerStore) AllAccounts(ctx context.Context) ([]domain.AccountView, error) {
	var rows []sqlAccount
	if err := s.client.DB().WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, domain.NewStorageError("all_accounts", err)
	}
	views := make([]domain.AccountView, 0, len(rows))
	for _, row := range rows {
		account, err := toDomainAccount(row)
		if err != nil {
			return nil, domain.NewStorageError("all_accounts", err)
		}
		views = append(views, account.View(domain.ClientID(row.ClientID)))
	}
	return views, nil
}

func toSQLAccount(client domain.ClientID, account *domain.Account) (sqlAccount, error) {
	ids := make([]uint64, 0, len(account.Disputes))
	for id := range account.Disputes {
		ids = append(ids, uint64(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	disputes, err := json.Marshal(ids)
	if err != nil {
		return sqlAccount{}, err
	}
	return sqlAccount{
		ClientID:  uint16(client),
		Available:      account.Available,
		Held:           account.Held,
		AvailableScale: scaleOf(account.Available),
		HeldScale:      scaleOf(account.Held),
		Status:         uint8(account.Status),
		Disputes:       string(disputes),
	}, nil
}

func toDomainAccount(row sqlAccount) (*domain.Account, error) {
	var ids []uint64
	if row.Disputes != "" {
		if err := json.Unmarshal([]byte(row.Disputes), &ids); err != nil {
			return nil, fmt.Errorf("decode disputes of client %d: %w", row.ClientID, err)
		}
	}
	account := domain.NewAccount()
	account.Available = withScale(row.Available, row.AvailableScale)
	account.Held = withScale(row.Held, row.HeldScale)
	account.Status = domain.AccountStatus(row.Status)
	for _, id := range ids {
		account.Disputes[domain.TxID(id)] = struct{}{}
	}
	return account, nil
}

// scaleOf 金額的小數位數
func scaleOf(a domain.Amount) int32 {
	if exp := a.Exponent(); exp < 0 {
		return -exp
	}
	return 0
}

// withScale 將資料庫讀回的金額 (固定 30 位小數) 還原為寫入時的小數位數
// 多出的位數都是 0，Round 不會改變數值
func withScale(a domain.Amount, scale int32) domain.Amount {
	return a.Round(scale)
}

var _ usecase.LedgerStore = (*LedgerStore)(nil)
