package grpc_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	bookinggrpc "rental-booking-engine/internal/api/grpc"
	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/service"
)

var renter = domain.CallerIdentity{ID: "renter-1", Role: domain.RoleUser}

func day(s string) time.Time {
	t, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func renterContext() context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("user-id", "renter-1", "user-role", "user"))
}

func mustStruct(t *testing.T, m map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestBookingHandler_CheckAvailability(t *testing.T) {
	t.Run("Range", func(t *testing.T) {
		svc := new(MockBookingService)
		handler := bookinggrpc.NewBookingHandler(svc)
		ctx := context.Background()

		conflict := day("2024-05-02")
		want := service.RangeCandidate(domain.NewDateRange(day("2024-05-01"), domain.DayBounds(day("2024-05-03")).End))
		svc.On("CheckAvailability", ctx, domain.CallerIdentity{}, "item-x", want).
			Return(&service.Availability{ConflictDay: &conflict, ConflictSource: service.ConflictSourceBlock, ConflictID: "b1"}, nil)

		res, err := handler.CheckAvailability(ctx, mustStruct(t, map[string]interface{}{
			"item_id":    "item-x",
			"start_date": "2024-05-01",
			"end_date":   "2024-05-03",
		}))
		require.NoError(t, err)
		assert.False(t, res.Fields["available"].GetBoolValue())
		assert.Equal(t, "2024-05-02", res.Fields["conflict_day"].GetStringValue())
		assert.Equal(t, "block", res.Fields["conflict_source"].GetStringValue())
		svc.AssertExpectations(t)
	})

	t.Run("Days", func(t *testing.T) {
		svc := new(MockBookingService)
		handler := bookinggrpc.NewBookingHandler(svc)
		ctx := context.Background()

		svc.On("CheckAvailability", ctx, domain.CallerIdentity{}, "item-x", service.DaysCandidate(day("2024-05-07"), day("2024-05-01"))).
			Return(&service.Availability{Available: true}, nil)

		res, err := handler.CheckAvailability(ctx, mustStruct(t, map[string]interface{}{
			"item_id": "item-x",
			"days":    []interface{}{"2024-05-07", "2024-05-01"},
		}))
		require.NoError(t, err)
		assert.True(t, res.Fields["available"].GetBoolValue())
		_, hasConflict := res.Fields["conflict_day"]
		assert.False(t, hasConflict)
	})

	t.Run("MissingItem", func(t *testing.T) {
		handler := bookinggrpc.NewBookingHandler(new(MockBookingService))
		_, err := handler.CheckAvailability(context.Background(), mustStruct(t, map[string]interface{}{
			"start_date": "2024-05-01",
			"end_date":   "2024-05-03",
		}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("BadDate", func(t *testing.T) {
		handler := bookinggrpc.NewBookingHandler(new(MockBookingService))
		_, err := handler.CheckAvailability(context.Background(), mustStruct(t, map[string]interface{}{
			"item_id":    "item-x",
			"start_date": "May 1st",
			"end_date":   "2024-05-03",
		}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestBookingHandler_AddBlock(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockBookingService)
		handler := bookinggrpc.NewBookingHandler(svc)
		ctx := renterContext()

		r := domain.NewDateRange(day("2024-05-04"), domain.DayBounds(day("2024-05-04")).End)
		svc.On("AddBlock", ctx, renter, "item-x", r, domain.BlockReasonMaintenance).
			Return(&domain.BlockedDateRange{ID: "b1", ItemID: "item-x", Range: r, Reason: domain.BlockReasonMaintenance}, nil)

		res, err := handler.AddBlock(ctx, mustStruct(t, map[string]interface{}{
			"item_id":    "item-x",
			"start_date": "2024-05-04",
			"end_date":   "2024-05-04",
			"reason":     "maintenance",
		}))
		require.NoError(t, err)
		assert.Equal(t, "b1", res.Fields["id"].GetStringValue())
		assert.Equal(t, "2024-05-04", res.Fields["start_date"].GetStringValue())
		assert.Equal(t, "2024-05-04", res.Fields["end_date"].GetStringValue())
		assert.Equal(t, "maintenance", res.Fields["reason"].GetStringValue())
		svc.AssertExpectations(t)
	})

	t.Run("UnknownReason", func(t *testing.T) {
		svc := new(MockBookingService)
		handler := bookinggrpc.NewBookingHandler(svc)

		_, err := handler.AddBlock(renterContext(), mustStruct(t, map[string]interface{}{
			"item_id":    "item-x",
			"start_date": "2024-05-04",
			"end_date":   "2024-05-05",
			"reason":     "holiday",
		}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		svc.AssertNotCalled(t, "AddBlock", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Conflict", func(t *testing.T) {
		svc := new(MockBookingService)
		handler := bookinggrpc.NewBookingHandler(svc)
		ctx := renterContext()

		svc.On("AddBlock", ctx, renter, "item-x", mock.Anything, domain.BlockReasonOwnerUse).
			Return(nil, fmt.Errorf("%w: taken", domain.ErrConflict))

		_, err := handler.AddBlock(ctx, mustStruct(t, map[string]interface{}{
			"item_id":    "item-x",
			"start_date": "2024-05-04",
			"end_date":   "2024-05-05",
			"reason":     "owner_use",
		}))
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	})
}

func TestBookingHandler_RemoveBlock(t *testing.T) {
	svc := new(MockBookingService)
	handler := bookinggrpc.NewBookingHandler(svc)
	ctx := renterContext()

	svc.On("RemoveBlock", ctx, renter, "item-x", "b1").Return(true, nil)

	res, err := handler.RemoveBlock(ctx, mustStruct(t, map[string]interface{}{"item_id": "item-x", "block_id": "b1"}))
	require.NoError(t, err)
	assert.True(t, res.Fields["success"].GetBoolValue())

	_, err = handler.RemoveBlock(ctx, mustStruct(t, map[string]interface{}{"item_id": "item-x"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestBookingHandler_RequestBooking(t *testing.T) {
	svc := new(MockBookingService)
	handler := bookinggrpc.NewBookingHandler(svc)
	ctx := renterContext()

	msg := "weekend trip"
	in := service.BookingRequest{
		ItemID:           "item-x",
		Range:            domain.NewDateRange(day("2024-05-01"), domain.DayBounds(day("2024-05-05")).End),
		TotalAmountCents: 12500,
		Message:          &msg,
	}
	svc.On("RequestBooking", ctx, renter, in).Return(&domain.RentalRequest{
		ID:               "r1",
		ItemID:           "item-x",
		RenterID:         "renter-1",
		OwnerID:          "owner-1",
		Range:            in.Range,
		TotalAmountCents: 12500,
		Message:          &msg,
		Status:           domain.RentalStatusPending,
	}, nil)

	res, err := handler.RequestBooking(ctx, mustStruct(t, map[string]interface{}{
		"item_id":            "item-x",
		"start_date":         "2024-05-01",
		"end_date":           "2024-05-05",
		"total_amount_cents": 12500,
		"message":            "weekend trip",
	}))
	require.NoError(t, err)
	assert.Equal(t, "r1", res.Fields["id"].GetStringValue())
	assert.Equal(t, "pending", res.Fields["status"].GetStringValue())
	assert.Equal(t, float64(12500), res.Fields["total_amount_cents"].GetNumberValue())
	assert.Equal(t, "weekend trip", res.Fields["message"].GetStringValue())
	svc.AssertExpectations(t)

	t.Run("FractionalAmount", func(t *testing.T) {
		_, err := handler.RequestBooking(ctx, mustStruct(t, map[string]interface{}{
			"item_id":            "item-x",
			"start_date":         "2024-05-01",
			"end_date":           "2024-05-05",
			"total_amount_cents": 10.5,
		}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		_, err := handler.RequestBooking(ctx, mustStruct(t, map[string]interface{}{
			"item_id":    "item-x",
			"start_date": "2024-05-01",
			"end_date":   "2024-05-05",
			"status":     "booked",
		}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestBookingHandler_Decisions(t *testing.T) {
	ctx := renterContext()
	tests := []struct {
		name   string
		method string
		call   func(h *bookinggrpc.BookingHandler, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
		err    error
		code   codes.Code
	}{
		{"Approve", "Approve", (*bookinggrpc.BookingHandler).ApproveRequest, nil, codes.OK},
		{"DeclineForbidden", "Decline", (*bookinggrpc.BookingHandler).DeclineRequest, domain.ErrForbidden, codes.PermissionDenied},
		{"CancelMissing", "Cancel", (*bookinggrpc.BookingHandler).CancelRequest, domain.ErrNotFound, codes.NotFound},
		{"GetStoreDown", "GetRequest", (*bookinggrpc.BookingHandler).GetRequest, domain.ErrStoreUnavailable, codes.Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockBookingService)
			handler := bookinggrpc.NewBookingHandler(svc)
			if tt.err != nil {
				svc.On(tt.method, mock.Anything, renter, "r1").Return(nil, fmt.Errorf("%w: r1", tt.err))
			} else {
				svc.On(tt.method, mock.Anything, renter, "r1").Return(&domain.RentalRequest{ID: "r1", Status: domain.RentalStatusApproved}, nil)
			}

			res, err := tt.call(handler, ctx, mustStruct(t, map[string]interface{}{"request_id": "r1"}))
			assert.Equal(t, tt.code, status.Code(err))
			if tt.code == codes.OK {
				assert.Equal(t, "approved", res.Fields["status"].GetStringValue())
			}
		})
	}
}
