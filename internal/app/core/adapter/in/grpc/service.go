package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
	pkggrpc "github.com/JoeShih716/go-payments-engine/pkg/grpc"
)

// ServiceName gRPC 服務名稱
const ServiceName = "ledger.LedgerService"

const (
	methodProcess     = "/" + ServiceName + "/Process"
	methodGetClient   = "/" + ServiceName + "/GetClient"
	methodListClients = "/" + ServiceName + "/ListClients"
)

// ProcessRequest 單筆交易，欄位與 CSV 相同
type ProcessRequest struct {
	Type   string  `json:"type"`
	Client uint16  `json:"client"`
	Tx     uint64  `json:"tx"`
	Amount *string `json:"amount,omitempty"`
}

// ProcessResponse 處理結果與該客戶最新的帳戶快照
type ProcessResponse struct {
	Outcome string             `json:"outcome"`
	Applied bool               `json:"applied"`
	Account domain.AccountView `json:"account"`
}

// NewProcessRequest 將已解析的交易轉回請求格式 (replay 用)
func NewProcessRequest(tran domain.Transaction) *ProcessRequest {
	req := &ProcessRequest{
		Type:   tran.Type.String(),
		Client: uint16(tran.Client),
		Tx:     uint64(tran.Tx),
	}
	if tran.IsRecorded() {
		s := domain.FormatAmount(tran.Amount)
		req.Amount = &s
	}
	return req
}

type GetClientRequest struct {
	Client uint16 `json:"client"`
}

type ListClientsRequest struct{}

type ListClientsResponse struct {
	Clients []domain.AccountView `json:"clients"`
}

// LedgerServiceServer gRPC 服務端介面
type LedgerServiceServer interface {
	Process(ctx context.Context, req *ProcessRequest) (*ProcessResponse, error)
	GetClient(ctx context.Context, req *GetClientRequest) (*domain.AccountView, error)
	ListClients(ctx context.Context, req *ListClientsRequest) (*ListClientsResponse, error)
}

// ServiceDesc 手動宣告的服務描述，訊息以 JSON codec 傳輸
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Process", Handler: processHandler},
		{MethodName: "GetClient", Handler: getClientHandler},
		{MethodName: "ListClients", Handler: listClientsHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterLedgerServiceServer 註冊服務
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func processHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ProcessRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).Process(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodProcess}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServiceServer).Process(ctx, req.(*ProcessRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getClientHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetClientRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).GetClient(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetClient}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServiceServer).GetClient(ctx, req.(*GetClientRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listClientsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListClientsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).ListClients(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodListClients}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServiceServer).ListClients(ctx, req.(*ListClientsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// LedgerClient gRPC 客戶端
type LedgerClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerClient(cc grpc.ClientConnInterface) *LedgerClient {
	return &LedgerClient{cc: cc}
}

func (c *LedgerClient) Process(ctx context.Context, in *ProcessRequest, opts ...grpc.CallOption) (*ProcessResponse, error) {
	out := new(ProcessResponse)
	if err := c.cc.Invoke(ctx, methodProcess, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LedgerClient) GetClient(ctx context.Context, in *GetClientRequest, opts ...grpc.CallOption) (*domain.AccountView, error) {
	out := new(domain.AccountView)
	if err := c.cc.Invoke(ctx, methodGetClient, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LedgerClient) ListClients(ctx context.Context, in *ListClientsRequest, opts ...grpc.CallOption) (*ListClientsResponse, error) {
	out := new(ListClientsResponse)
	if err := c.cc.Invoke(ctx, methodListClients, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(pkggrpc.CodecName)}, opts...)
}
