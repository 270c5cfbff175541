package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"furniture-catalog/internal/domain"
)

// BudgetServiceName is the fully qualified gRPC service name.
const BudgetServiceName = "furniture.v1.BudgetService"

// BudgetServiceServer is the server API for furniture.v1.BudgetService.
// Requests are google.protobuf.Struct with "id" plus the field being changed;
// every method answers with the resulting budget snapshot as a Struct.
type BudgetServiceServer interface {
	GetBudget(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	UpdatePrice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateQuantity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateRoom(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateRoomNumber(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteItem(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// GRPCHandler implements BudgetServiceServer on top of the engine.
type GRPCHandler struct {
	svc BudgetService
	log *slog.Logger
}

var _ BudgetServiceServer = (*GRPCHandler)(nil)

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(svc BudgetService, log *slog.Logger) *GRPCHandler {
	if log == nil {
		log = slog.Default()
	}
	return &GRPCHandler{svc: svc, log: log.With("component", "grpc")}
}

// --- Helper: Error Mapping ---

func (s *GRPCHandler) toStatus(ctx context.Context, method string, err error) error {
	var (
		notFound *domain.ItemNotFoundError
		invalid  *domain.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		return status.Error(codes.NotFound, notFound.Error())
	case errors.As(err, &invalid):
		return status.Error(codes.InvalidArgument, invalid.Error())
	case errors.Is(err, domain.ErrCorruptData):
		s.log.ErrorContext(ctx, "stored data is corrupt", "method", method, "error", err)
		return status.Error(codes.DataLoss, "stored item data is corrupt")
	case errors.Is(err, domain.ErrPersistence):
		s.log.ErrorContext(ctx, "storage unavailable", "method", method, "error", err)
		return status.Error(codes.Unavailable, "item storage is unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		s.log.ErrorContext(ctx, "request failed", "method", method, "error", err)
		return status.Errorf(codes.Internal, "%s failed", method)
	}
}

func (s *GRPCHandler) reply(ctx context.Context, method string, snap *domain.BudgetSnapshot, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, s.toStatus(ctx, method, err)
	}
	out, err := snapshotToStruct(snap)
	if err != nil {
		s.log.ErrorContext(ctx, "could not encode snapshot", "method", method, "error", err)
		return nil, status.Error(codes.Internal, "could not encode budget")
	}
	return out, nil
}

// snapshotToStruct renders snap with the same field names as the HTTP API.
func snapshotToStruct(snap *domain.BudgetSnapshot) (*structpb.Struct, error) {
	raw, err := json.Marshal(newBudgetResponse(snap))
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func requiredID(req *structpb.Struct) (string, error) {
	id := strings.TrimSpace(req.GetFields()["id"].GetStringValue())
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "id is required")
	}
	return id, nil
}

// intField reads an integral number field; ok is false when it is absent or null.
func intField(req *structpb.Struct, name string) (n int, ok bool, err error) {
	v, present := req.GetFields()[name]
	if !present {
		return 0, false, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, false, nil
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
			return 0, false, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
		}
		return int(f), true, nil
	default:
		return 0, false, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
}

// --- BudgetService Methods ---

func (s *GRPCHandler) GetBudget(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snap, err := s.svc.Budget(ctx)
	return s.reply(ctx, "GetBudget", snap, err)
}

func (s *GRPCHandler) UpdatePrice(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req)
	if err != nil {
		return nil, err
	}
	price := req.GetFields()["price"].GetStringValue()
	snap, err := s.svc.UpdatePrice(ctx, id, price)
	return s.reply(ctx, "UpdatePrice", snap, err)
}

func (s *GRPCHandler) UpdateQuantity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req)
	if err != nil {
		return nil, err
	}
	qty, ok, err := intField(req, "quantity")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "quantity is required")
	}
	snap, err := s.svc.UpdateQuantity(ctx, id, qty)
	return s.reply(ctx, "UpdateQuantity", snap, err)
}

func (s *GRPCHandler) UpdateRoom(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req)
	if err != nil {
		return nil, err
	}
	room := req.GetFields()["room"].GetStringValue()
	snap, err := s.svc.UpdateRoom(ctx, id, room)
	return s.reply(ctx, "UpdateRoom", snap, err)
}

func (s *GRPCHandler) UpdateRoomNumber(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req)
	if err != nil {
		return nil, err
	}
	n, ok, err := intField(req, "roomNumber")
	if err != nil {
		return nil, err
	}
	var number *int
	if ok {
		if n <= 0 {
			return nil, status.Error(codes.InvalidArgument, "roomNumber must be positive")
		}
		number = &n
	}
	snap, err := s.svc.UpdateRoomNumber(ctx, id, number)
	return s.reply(ctx, "UpdateRoomNumber", snap, err)
}

func (s *GRPCHandler) DeleteItem(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	snap, err := s.svc.DeleteItem(ctx, id)
	return s.reply(ctx, "DeleteItem", snap, err)
}

// --- Service Registration ---

// RegisterBudgetServiceServer registers srv on s.
func RegisterBudgetServiceServer(s grpc.ServiceRegistrar, srv BudgetServiceServer) {
	s.RegisterService(&budgetServiceDesc, srv)
}

func unaryHandler[Req any](method string, call func(BudgetServiceServer, context.Context, *Req) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BudgetServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + BudgetServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(BudgetServiceServer), ctx, req.(*Req))
			})
		},
	}
}

var budgetServiceDesc = grpc.ServiceDesc{
	ServiceName: BudgetServiceName,
	HandlerType: (*BudgetServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("GetBudget", BudgetServiceServer.GetBudget),
		unaryHandler("UpdatePrice", BudgetServiceServer.UpdatePrice),
		unaryHandler("UpdateQuantity", BudgetServiceServer.UpdateQuantity),
		unaryHandler("UpdateRoom", BudgetServiceServer.UpdateRoom),
		unaryHandler("UpdateRoomNumber", BudgetServiceServer.UpdateRoomNumber),
		unaryHandler("DeleteItem", BudgetServiceServer.DeleteItem),
	},
	Streams: []grpc.StreamDesc{},
}

// UnaryLoggingInterceptor logs method, status code and latency of each call.
func UnaryLoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	log = log.With("component", "grpc")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		level := slog.LevelInfo
		if code != codes.OK && code != codes.NotFound && code != codes.InvalidArgument {
			level = slog.LevelError
		}
		log.Log(ctx, level, "rpc",
			"method", info.FullMethod,
			"code", code.String(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

// BudgetServiceClient calls furniture.v1.BudgetService.
type BudgetServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBudgetServiceClient(cc grpc.ClientConnInterface) *BudgetServiceClient {
	return &BudgetServiceClient{cc: cc}
}

func (c *BudgetServiceClient) invoke(ctx context.Context, method string, in any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+BudgetServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BudgetServiceClient) GetBudget(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetBudget", &emptypb.Empty{}, opts...)
}

func (c *BudgetServiceClient) UpdatePrice(ctx context.Context, id, price string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "UpdatePrice", mustStruct(map[string]any{"id": id, "price": price}), opts...)
}

func (c *BudgetServiceClient) UpdateQuantity(ctx context.Context, id string, qty int, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "UpdateQuantity", mustStruct(map[string]any{"id": id, "quantity": qty}), opts...)
}

func (c *BudgetServiceClient) UpdateRoom(ctx context.Context, id, room string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "UpdateRoom", mustStruct(map[string]any{"id": id, "room": room}), opts...)
}

// UpdateRoomNumber clears the number when n is nil.
func (c *BudgetServiceClient) UpdateRoomNumber(ctx context.Context, id string, n *int, opts ...grpc.CallOption) (*structpb.Struct, error) {
	fields := map[string]any{"id": id, "roomNumber": nil}
	if n != nil {
		fields["roomNumber"] = *n
	}
	return c.invoke(ctx, "UpdateRoomNumber", mustStruct(fields), opts...)
}

func (c *BudgetServiceClient) DeleteItem(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "DeleteItem", wrapperspb.String(id), opts...)
}

func mustStruct(m map[string]any) *structpb.Struct {
	s, err := structpb.NewStruct(m)
	if err != nil {
		panic(fmt.Sprintf("build request: %v", err))
	}
	return s
}
