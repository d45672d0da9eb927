package usecase

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
)

// ErrSequencerStopped Sequencer 已停止，不再接受交易
var ErrSequencerStopped = errors.New("sequencer stopped")

// processRequest 交易請求包裝 channel，讓 Submit 可以等待結果
type processRequest struct {
	Tx     domain.Transaction
	Result chan processResult
}

type processResult struct {
	Outcome domain.Outcome
	Err     error
}

// Sequencer 讓多個來源 (例如 gRPC 連線) 的交易依序進入單一寫入者 Processor
//
// Submit(等待) -> Channel -> Run Loop (唯一呼叫 Processor.Process) -> Result Channel -> Submit(收到結果)
type Sequencer struct {
	processor *Processor
	logger    *zap.Logger
	// 輸送帶 負責接收交易
	requests chan *processRequest
	done     chan struct{}
	// Pool 減少 GC 壓力
	requestPool sync.Pool
}

// NewSequencer 建立 Sequencer，buffer 為輸送帶容量
func NewSequencer(processor *Processor, buffer int, logger *zap.Logger) *Sequencer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequencer{
		processor: processor,
		logger:    logger,
		requests:  make(chan *processRequest, buffer),
		done:      make(chan struct{}),
		requestPool: sync.Pool{
			New: func() interface{} {
				return &processRequest{
					Result: make(chan processResult, 1),
				}
			},
		},
	}
}

// Start 啟動 run loop (非同步)，ctx 取消後處理完剩下的交易再結束
func (s *Sequencer) Start(ctx context.Context) {
	go s.run(ctx)
}

// Done 在 run loop 結束後關閉
func (s *Sequencer) Done() <-chan struct{} {
	return s.done
}

// Submit 送出交易並等待處理結果
func (s *Sequencer) Submit(ctx context.Context, tran domain.Transaction) (domain.Outcome, error) {
	req := s.requestPool.Get().(*processRequest)
	req.Tx = tran

	select {
	case s.requests <- req:
	case <-s.done:
		s.requestPool.Put(req)
		return 0, ErrSequencerStopped
	case <-ctx.Done():
		s.requestPool.Put(req)
		return 0, ctx.Err()
	}

	// 已進入輸送帶就不理會 ctx，以免結果寫入被回收的 request
	select {
	case res := <-req.Result:
		s.requestPool.Put(req)
		return res.Outcome, res.Err
	case <-s.done:
		// run loop 在 close(done) 前已寫入所有結果
		select {
		case res := <-req.Result:
			s.requestPool.Put(req)
			return res.Outcome, res.Err
		default:
			// 仍留在 channel 中，不放回 pool
			return 0, ErrSequencerStopped
		}
	}
}

func (s *Sequencer) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的交易處理完
			s.drain()
			return
		case req := <-s.requests:
			s.process(req)
		}
	}
}

func (s *Sequencer) drain() {
	for {
		select {
		case req := <-s.requests:
			s.process(req)
		default:
			return
		}
	}
}

func (s *Sequencer) process(req *processRequest) {
	// Process 本身不會被取消，使用獨立的 context
	outcome, err := s.processor.Process(context.Background(), req.Tx)
	if err != nil {
		s.logger.Error("sequenced transaction failed", zap.Error(err))
	}
	req.Result <- processResult{Outcome: outcome, Err: err}
}
