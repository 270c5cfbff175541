package api

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"furniture-catalog/internal/budget"
	"furniture-catalog/internal/domain"
	"furniture-catalog/internal/store"
)

func startGRPC(t *testing.T, svc BudgetService) *BudgetServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(UnaryLoggingInterceptor(discardLogger())))
	RegisterBudgetServiceServer(srv, NewGRPCHandler(svc, discardLogger()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewBudgetServiceClient(conn)
}

func totalCost(t *testing.T, s *structpb.Struct) float64 {
	t.Helper()
	v, ok := s.GetFields()["totalCost"]
	require.True(t, ok)
	return v.GetNumberValue()
}

func TestGRPC_BudgetService(t *testing.T) {
	engine := budget.NewEngine(store.NewMemoryStore(seed()...))
	client := startGRPC(t, engine)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := client.GetBudget(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1399.0, totalCost(t, snap))
	assert.Equal(t, "$1,399.00", snap.GetFields()["formattedTotal"].GetStringValue())
	rooms := snap.GetFields()["byRoom"].GetListValue().GetValues()
	require.Len(t, rooms, 2)
	assert.Equal(t, "Living Room", rooms[0].GetStructValue().GetFields()["roomName"].GetStringValue())

	snap, err = client.UpdatePrice(ctx, "desk", "$500")
	require.NoError(t, err)
	assert.Equal(t, 1899.0, totalCost(t, snap))

	snap, err = client.UpdateQuantity(ctx, "pillow", 2)
	require.NoError(t, err)
	assert.Equal(t, 1849.0, totalCost(t, snap))

	snap, err = client.UpdateQuantity(ctx, "pillow", -1)
	require.NoError(t, err)
	assert.Equal(t, 1849.0, totalCost(t, snap))

	snap, err = client.UpdateRoom(ctx, "desk", "Study")
	require.NoError(t, err)
	assert.Equal(t, 2.0, snap.GetFields()["roomsUsed"].GetNumberValue())

	snap, err = client.UpdateRoomNumber(ctx, "desk", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, snap.GetFields()["roomsUsed"].GetNumberValue())

	five := 5
	snap, err = client.UpdateRoomNumber(ctx, "pillow", &five)
	require.NoError(t, err)
	assert.Equal(t, 2.0, snap.GetFields()["roomsUsed"].GetNumberValue())

	snap, err = client.DeleteItem(ctx, "sofa")
	require.NoError(t, err)
	assert.Equal(t, 550.0, totalCost(t, snap))

	_, err = client.DeleteItem(ctx, "sofa")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGRPC_UpdateRoom_KeepsNameVerbatim(t *testing.T) {
	ms := store.NewMemoryStore(seed()...)
	client := startGRPC(t, budget.NewEngine(ms))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := client.UpdateRoom(ctx, "desk", "Bedroom ")
	require.NoError(t, err)

	var names []string
	for _, r := range snap.GetFields()["byRoom"].GetListValue().GetValues() {
		names = append(names, r.GetStructValue().GetFields()["roomName"].GetStringValue())
	}
	assert.Contains(t, names, "Bedroom ")

	items, err := ms.Load(ctx)
	require.NoError(t, err)
	for _, it := range items {
		if it.ID == "desk" {
			assert.Equal(t, "Bedroom ", it.Room)
		}
	}
}

func TestBudgetServiceDesc(t *testing.T) {
	assert.Equal(t, BudgetServiceName, budgetServiceDesc.ServiceName)
	assert.Len(t, budgetServiceDesc.Methods, 6)
	// No proto file is registered, so the desc must not claim one.
	assert.Nil(t, budgetServiceDesc.Metadata)
}

func TestGRPC_InvalidArguments(t *testing.T) {
	m := new(MockCatalog)
	client := startGRPC(t, m)
	ctx := context.Background()

	_, err := client.UpdatePrice(ctx, "  ", "$1")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.DeleteItem(ctx, "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	zero := 0
	_, err = client.UpdateRoomNumber(ctx, "a", &zero)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.invoke(ctx, "UpdateQuantity", mustStruct(map[string]any{"id": "a", "quantity": 1.5}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.invoke(ctx, "UpdateQuantity", mustStruct(map[string]any{"id": "a"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.invoke(ctx, "UpdateQuantity", mustStruct(map[string]any{"id": "a", "quantity": "three"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	m.AssertNotCalled(t, "UpdatePrice", mock.Anything, mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestGRPC_ErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"not found", &domain.ItemNotFoundError{ID: "x"}, codes.NotFound},
		{"corrupt", &domain.CorruptDataError{Source: "redis", Err: errors.New("bad json")}, codes.DataLoss},
		{"persistence", &domain.PersistenceError{Op: "store: get", Err: errors.New("refused")}, codes.Unavailable},
		{"unknown", errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockCatalog)
			m.On("Budget", mock.Anything).Return(nil, tt.err)
			client := startGRPC(t, m)

			_, err := client.GetBudget(context.Background())
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}
