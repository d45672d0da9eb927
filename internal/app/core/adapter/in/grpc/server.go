package grpc

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
)

// Submitter 依序送出交易 (usecase.Sequencer)
type Submitter interface {
	Submit(ctx context.Context, tran domain.Transaction) (domain.Outcome, error)
}

// ViewReader 讀取帳戶快照 (usecase.Processor)
type ViewReader interface {
	GetClientView(ctx context.Context, client domain.ClientID) (domain.AccountView, error)
	GetAllClientViews(ctx context.Context) ([]domain.AccountView, error)
}

type GrpcServer struct {
	submitter Submitter
	views     ViewReader
	logger    *zap.Logger
}

func NewGrpcServer(submitter Submitter, views ViewReader, logger *zap.Logger) *GrpcServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GrpcServer{
		submitter: submitter,
		views:     views,
		logger:    logger,
	}
}

func (s *GrpcServer) Process(ctx context.Context, req *ProcessRequest) (*ProcessResponse, error) {
	// 1. 解析金額與交易
	var amount *domain.Amount
	if req.Amount != nil {
		a, err := domain.ParseAmount(*req.Amount)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		amount = &a
	}
	tran, err := domain.ParseTransaction(req.Type, domain.ClientID(req.Client), domain.TxID(req.Tx), amount)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	// 2. 送進 Sequencer 排隊處理
	outcome, err := s.submitter.Submit(ctx, tran)
	if err != nil {
		return nil, s.toStatus(err)
	}

	// 3. 取得最新帳戶快照
	view, err := s.views.GetClientView(ctx, tran.Client)
	if err != nil {
		return nil, s.toStatus(err)
	}

	return &ProcessResponse{
		Outcome: outcome.String(),
		Applied: outcome.Applied(),
		Account: view,
	}, nil
}

func (s *GrpcServer) GetClient(ctx context.Context, req *GetClientRequest) (*domain.AccountView, error) {
	view, err := s.views.GetClientView(ctx, domain.ClientID(req.Client))
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &view, nil
}

func (s *GrpcServer) ListClients(ctx context.Context, _ *ListClientsRequest) (*ListClientsResponse, error) {
	views, err := s.views.GetAllClientViews(ctx)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &ListClientsResponse{Clients: views}, nil
}

func (s *GrpcServer) toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, usecase.ErrSequencerStopped):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, domain.ErrStorage):
		s.logger.Error("storage failure", zap.Error(err))
		return status.Error(codes.Internal, err.Error())
	default:
		return status.Error(codes.Unknown, err.Error())
	}
}

var _ LedgerServiceServer = (*GrpcServer)(nil)
