package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
)

// JournalEntry 寫入 Journal 的單筆處理紀錄
type JournalEntry struct {
	RunID   uuid.UUID       `json:"run_id"`
	Seq     uint64          `json:"seq"`
	Type    string          `json:"type"`
	Client  domain.ClientID `json:"client"`
	Tx      domain.TxID     `json:"tx"`
	Amount  *domain.Amount  `json:"amount,omitempty"`
	Outcome string          `json:"outcome"`
}

// Processor 是核心業務邏輯層，一次處理一筆交易
//
// Processor 是帳戶與 LedgerStore 唯一的寫入者，不可同時從多個 goroutine 呼叫 Process；
// 多個來源時請透過 Sequencer 排隊。
type Processor struct {
	store    LedgerStore
	logger   *zap.Logger
	observer Observer
	journal  Journal
	runID    uuid.UUID
	seq      uint64
}

// ProcessorOption 定義了 Processor 的配置選項函數
type ProcessorOption func(*Processor)

// WithLogger 設定 Processor 使用的 logger
func WithLogger(logger *zap.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithObserver 設定處理結果的觀察者 (Metrics)
func WithObserver(observer Observer) ProcessorOption {
	return func(p *Processor) {
		p.observer = observer
	}
}

// WithJournal 設定處理紀錄的 Journal
func WithJournal(journal Journal) ProcessorOption {
	return func(p *Processor) {
		p.journal = journal
	}
}

// NewProcessor 建立 Processor，每個 Processor 有自己的 run id
func NewProcessor(store LedgerStore, opts ...ProcessorOption) *Processor {
	p := &Processor{
		store:  store,
		logger: zap.NewNop(),
		runID:  uuid.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("run_id", p.runID.String()))
	return p
}

// RunID 回傳本次處理的 run id
func (p *Processor) RunID() uuid.UUID {
	return p.runID
}

// Process 處理單筆交易
//
// 參數:
//
//	ctx: 上下文
//	tran: 已解析的交易
//
// 回傳:
//
//	domain.Outcome: 交易是否生效，未生效時說明原因
//	error: 只有儲存層錯誤會回傳 (errors.Is(err, domain.ErrStorage))
func (p *Processor) Process(ctx context.Context, tran domain.Transaction) (domain.Outcome, error) {
	// 1. 載入帳戶 (不存在則建立空帳戶)
	account, err := p.loadAccount(ctx, tran.Client)
	if err != nil {
		return 0, p.wrap(tran, err)
	}

	// 2. 凍結帳戶拒絕所有交易，也不寫回
	if account.IsFrozen() {
		p.finish(tran, domain.OutcomeFrozenAccount)
		return domain.OutcomeFrozenAccount, nil
	}

	// 3. 依 Type 分發
	outcome, err := p.dispatch(ctx, account, tran)
	if err != nil {
		return 0, p.wrap(tran, err)
	}

	// 4. 只保存 Deposit/Withdrawal
	if tran.IsRecorded() {
		if err := p.store.PutTransaction(ctx, tran); err != nil {
			return 0, p.wrap(tran, err)
		}
	}

	// 5. 寫回帳戶 (即使沒有變更)
	if err := p.store.PutAccount(ctx, tran.Client, account); err != nil {
		return 0, p.wrap(tran, err)
	}

	p.finish(tran, outcome)
	return outcome, nil
}

func (p *Processor) dispatch(ctx context.Context, account *domain.Account, tran domain.Transaction) (domain.Outcome, error) {
	switch tran.Type {
	case domain.TransactionTypeDeposit:
		account.ApplyDeposit(tran.Amount)
		return domain.OutcomeApplied, nil
	case domain.TransactionTypeWithdrawal:
		return account.ApplyWithdrawal(tran.Amount), nil
	case domain.TransactionTypeDispute:
		if account.IsDisputed(tran.Tx) {
			return domain.OutcomeAlreadyDisputed, nil
		}
		deposit, outcome, err := p.referencedDeposit(ctx, tran)
		if err != nil || !outcome.Applied() {
			return outcome, err
		}
		account.ApplyDispute(deposit)
		return domain.OutcomeApplied, nil
	case domain.TransactionTypeResolve, domain.TransactionTypeChargeback:
		if !account.IsDisputed(tran.Tx) {
			return domain.OutcomeNotDisputed, nil
		}
		deposit, outcome, err := p.referencedDeposit(ctx, tran)
		if err != nil || !outcome.Applied() {
			return outcome, err
		}
		if tran.Type == domain.TransactionTypeResolve {
			account.ApplyResolve(deposit)
		} else {
			account.ApplyChargeback(deposit)
		}
		return domain.OutcomeApplied, nil
	default:
		// ParseTransaction 不會產生其他類型
		panic(fmt.Sprintf("unexpected transaction type %d", tran.Type))
	}
}

// referencedDeposit 取得 meta 交易參照的原始存款
// 不存在或不是存款時回傳對應的 no-op Outcome
func (p *Processor) referencedDeposit(ctx context.Context, tran domain.Transaction) (domain.Transaction, domain.Outcome, error) {
	ref, ok, err := p.store.GetTransaction(ctx, tran.UID())
	if err != nil {
		return domain.Transaction{}, 0, err
	}
	if !ok {
		return domain.Transaction{}, domain.OutcomeUnknownReference, nil
	}
	if ref.Type != domain.TransactionTypeDeposit {
		return domain.Transaction{}, domain.OutcomeNotADeposit, nil
	}
	return ref, domain.OutcomeApplied, nil
}

func (p *Processor) loadAccount(ctx context.Context, client domain.ClientID) (*domain.Account, error) {
	account, ok, err := p.store.GetAccount(ctx, client)
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.NewAccount(), nil
	}
	return account, nil
}

// finish 記錄 log、metrics 與 journal
func (p *Processor) finish(tran domain.Transaction, outcome domain.Outcome) {
	p.seq++

	if !outcome.Applied() {
		p.logger.Warn("transaction ignored",
			zap.Stringer("type", tran.Type),
			zap.Uint16("client", uint16(tran.Client)),
			zap.Uint64("tx", uint64(tran.Tx)),
			zap.Stringer("outcome", outcome),
		)
	}

	if p.observer != nil {
		p.observer.Observe(tran, outcome)
	}

	if p.journal != nil {
		entry := JournalEntry{
			RunID:   p.runID,
			Seq:     p.seq,
			Type:    tran.Type.String(),
			Client:  tran.Client,
			Tx:      tran.Tx,
			Outcome: outcome.String(),
		}
		if tran.IsRecorded() {
			amount := tran.Amount
			entry.Amount = &amount
		}
		if err := p.journal.Write(entry); err != nil {
			p.logger.Error("journal write failed", zap.Uint64("seq", p.seq), zap.Error(err))
		}
	}
}

func (p *Processor) wrap(tran domain.Transaction, err error) error {
	p.logger.Error("process transaction failed",
		zap.Stringer("type", tran.Type),
		zap.Uint16("client", uint16(tran.Client)),
		zap.Uint64("tx", uint64(tran.Tx)),
		zap.Error(err),
	)
	return fmt.Errorf("process %s %d for client %d: %w", tran.Type, tran.Tx, tran.Client, err)
}

// GetClientView 取得單一客戶的帳戶快照，從未出現的客戶回傳空帳戶
func (p *Processor) GetClientView(ctx context.Context, client domain.ClientID) (domain.AccountView, error) {
	account, err := p.loadAccount(ctx, client)
	if err != nil {
		return domain.AccountView{}, err
	}
	return account.View(client), nil
}

// GetAllClientViews 取得所有帳戶快照，依 client id 排序
func (p *Processor) GetAllClientViews(ctx context.Context) ([]domain.AccountView, error) {
	views, err := p.store.AllAccounts(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].Client < views[j].Client
	})
	return views, nil
}
