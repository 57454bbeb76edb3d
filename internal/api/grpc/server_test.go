package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	bookinggrpc "rental-booking-engine/internal/api/grpc"
	"rental-booking-engine/internal/api/grpc/interceptor"
	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/metrics"
	"rental-booking-engine/internal/repository/memory"
	"rental-booking-engine/internal/security"
	"rental-booking-engine/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	conn   *grpc.ClientConn
	tokens security.TokenManager
}

func startServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	store.SeedItem(domain.Item{ID: "item-x", OwnerID: "owner-1"})

	m := metrics.New("test")
	calendar := service.NewBlockedCalendar(store.BlockRepository)
	ledger := service.NewRentalRequestLedger(store.RentalRequestRepository)
	checker := service.NewAvailabilityChecker(calendar, ledger, m)
	lifecycle := service.NewBookingLifecycleController(calendar, ledger, checker, service.NopPublisher{}, m, service.DefaultLifecycleOptions())
	bookingSvc := service.NewBookingService(service.NewOwnershipPolicy(store.ItemRepository), calendar, ledger, checker, lifecycle)

	tokens := security.NewTokenManager(testSecret, time.Hour)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		interceptor.Metrics(m),
		interceptor.NewAuthInterceptor(tokens).Unary(),
	))
	bookinggrpc.RegisterBookingServiceServer(srv, bookinggrpc.NewBookingHandler(bookingSvc))

	lis := bufconn.Listen(1024 * 1024)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &testServer{conn: conn, tokens: tokens}
}

func (s *testServer) as(t *testing.T, userID string) context.Context {
	t.Helper()
	if userID == "" {
		return context.Background()
	}
	token, err := s.tokens.GenerateAccessToken(domain.CallerIdentity{ID: userID, Role: domain.RoleUser})
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func (s *testServer) call(ctx context.Context, method string, in map[string]interface{}) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := s.conn.Invoke(ctx, method, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func TestBookingService_RoundTrip(t *testing.T) {
	s := startServer(t)

	// Owner blocks two days for maintenance
	_, err := s.call(s.as(t, "owner-1"), bookinggrpc.BookingService_AddBlock_FullMethodName, map[string]interface{}{
		"item_id":    "item-x",
		"start_date": "2024-05-03",
		"end_date":   "2024-05-04",
		"reason":     "maintenance",
	})
	require.NoError(t, err)

	// Anonymous availability reads are public
	res, err := s.call(s.as(t, ""), bookinggrpc.BookingService_CheckAvailability_FullMethodName, map[string]interface{}{
		"item_id":    "item-x",
		"start_date": "2024-05-01",
		"end_date":   "2024-05-05",
	})
	require.NoError(t, err)
	assert.False(t, res.Fields["available"].GetBoolValue())
	assert.Equal(t, "2024-05-03", res.Fields["conflict_day"].GetStringValue())

	// Overlapping request is refused
	_, err = s.call(s.as(t, "renter-1"), bookinggrpc.BookingService_RequestBooking_FullMethodName, map[string]interface{}{
		"item_id":    "item-x",
		"start_date": "2024-05-01",
		"end_date":   "2024-05-05",
	})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	// A clear range goes through and is approved by the owner
	rq, err := s.call(s.as(t, "renter-1"), bookinggrpc.BookingService_RequestBooking_FullMethodName, map[string]interface{}{
		"item_id":            "item-x",
		"start_date":         "2024-05-05",
		"end_date":           "2024-05-07",
		"total_amount_cents": 4500,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", rq.Fields["status"].GetStringValue())
	requestID := rq.Fields["id"].GetStringValue()

	// Renters cannot approve their own requests
	_, err = s.call(s.as(t, "renter-1"), bookinggrpc.BookingService_ApproveRequest_FullMethodName, map[string]interface{}{"request_id": requestID})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	approved, err := s.call(s.as(t, "owner-1"), bookinggrpc.BookingService_ApproveRequest_FullMethodName, map[string]interface{}{"request_id": requestID})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Fields["status"].GetStringValue())

	blocks, err := s.call(s.as(t, ""), bookinggrpc.BookingService_ListBlocks_FullMethodName, map[string]interface{}{"item_id": "item-x"})
	require.NoError(t, err)
	list := blocks.Fields["blocks"].GetListValue().GetValues()
	require.Len(t, list, 4)

	rented := 0
	for _, v := range list {
		if v.GetStructValue().Fields["reason"].GetStringValue() == "rented" {
			rented++
			assert.Equal(t, requestID, v.GetStructValue().Fields["request_id"].GetStringValue())
		}
	}
	assert.Equal(t, 3, rented)

	rentals, err := s.call(s.as(t, "renter-1"), bookinggrpc.BookingService_ListMyRentals_FullMethodName, map[string]interface{}{})
	require.NoError(t, err)
	assert.Len(t, rentals.Fields["requests"].GetListValue().GetValues(), 1)
}

func TestBookingService_Authentication(t *testing.T) {
	s := startServer(t)

	t.Run("MissingToken", func(t *testing.T) {
		_, err := s.call(context.Background(), bookinggrpc.BookingService_AddBlock_FullMethodName, map[string]interface{}{
			"item_id":    "item-x",
			"start_date": "2024-05-03",
			"end_date":   "2024-05-04",
			"reason":     "maintenance",
		})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("SpoofedHeaderIgnored", func(t *testing.T) {
		ctx := metadata.AppendToOutgoingContext(context.Background(), "user-id", "owner-1")
		_, err := s.call(ctx, bookinggrpc.BookingService_AddBlock_FullMethodName, map[string]interface{}{
			"item_id":    "item-x",
			"start_date": "2024-05-03",
			"end_date":   "2024-05-04",
			"reason":     "maintenance",
		})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("InvalidToken", func(t *testing.T) {
		ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer nope")
		_, err := s.call(ctx, bookinggrpc.BookingService_GetRequest_FullMethodName, map[string]interface{}{"request_id": "r1"})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("NotOwner", func(t *testing.T) {
		_, err := s.call(s.as(t, "renter-1"), bookinggrpc.BookingService_AddBlock_FullMethodName, map[string]interface{}{
			"item_id":    "item-x",
			"start_date": "2024-05-03",
			"end_date":   "2024-05-04",
			"reason":     "maintenance",
		})
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("UnknownItem", func(t *testing.T) {
		_, err := s.call(s.as(t, ""), bookinggrpc.BookingService_ListBlocks_FullMethodName, map[string]interface{}{"item_id": "nope"})
		assert.Equal(t, codes.NotFound, status.Code(err))
	})
}
