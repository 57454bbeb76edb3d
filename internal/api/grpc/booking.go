package grpc

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/service"
)

type BookingHandler struct {
	bookingSvc service.BookingService
}

var _ BookingServiceServer = (*BookingHandler)(nil)

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

func (h *BookingHandler) CheckAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	itemID, err := requiredString(req, "item_id")
	if err != nil {
		return nil, err
	}
	candidate, err := candidateFromStruct(req)
	if err != nil {
		return nil, toStatus(err)
	}

	availability, err := h.bookingSvc.CheckAvailability(ctx, GetCallerFromContext(ctx), itemID, candidate)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(mapAvailability(availability))
}

func (h *BookingHandler) ListBlocks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	itemID, err := requiredString(req, "item_id")
	if err != nil {
		return nil, err
	}

	blocks, err := h.bookingSvc.ListBlocks(ctx, GetCallerFromContext(ctx), itemID)
	if err != nil {
		return nil, toStatus(err)
	}
	return blocksToStruct(blocks)
}

func (h *BookingHandler) AddBlock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	itemID, err := requiredString(req, "item_id")
	if err != nil {
		return nil, err
	}
	r, err := requiredRange(req)
	if err != nil {
		return nil, toStatus(err)
	}
	reasonStr, err := requiredString(req, "reason")
	if err != nil {
		return nil, err
	}
	reason := domain.BlockReason(reasonStr)
	if !reason.IsValid() {
		return nil, toStatus(fmt.Errorf("%w: %q", domain.ErrInvalidReason, reasonStr))
	}

	block, err := h.bookingSvc.AddBlock(ctx, GetCallerFromContext(ctx), itemID, r, reason)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(mapBlock(block))
}

func (h *BookingHandler) RemoveBlock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	itemID, err := requiredString(req, "item_id")
	if err != nil {
		return nil, err
	}
	blockID, err := requiredString(req, "block_id")
	if err != nil {
		return nil, err
	}

	success, err := h.bookingSvc.RemoveBlock(ctx, GetCallerFromContext(ctx), itemID, blockID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"success": success})
}

func (h *BookingHandler) RequestBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	itemID, err := requiredString(req, "item_id")
	if err != nil {
		return nil, err
	}
	r, err := requiredRange(req)
	if err != nil {
		return nil, toStatus(err)
	}
	amount, err := optionalInt64(req, "total_amount_cents")
	if err != nil {
		return nil, err
	}
	message, err := optionalString(req, "message")
	if err != nil {
		return nil, err
	}
	st, err := optionalStatus(req)
	if err != nil {
		return nil, toStatus(err)
	}

	in := service.BookingRequest{
		ItemID:  itemID,
		Range:   r,
		Message: message,
	}
	if amount != nil {
		in.TotalAmountCents = *amount
	}
	if st != nil {
		in.Status = *st
	}

	rq, err := h.bookingSvc.RequestBooking(ctx, GetCallerFromContext(ctx), in)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(mapRentalRequest(rq))
}

func (h *BookingHandler) ApproveRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.decide(ctx, req, h.bookingSvc.Approve)
}

func (h *BookingHandler) DeclineRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.decide(ctx, req, h.bookingSvc.Decline)
}

func (h *BookingHandler) CancelRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.decide(ctx, req, h.bookingSvc.Cancel)
}

func (h *BookingHandler) GetRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.decide(ctx, req, h.bookingSvc.GetRequest)
}

type requestAction func(ctx context.Context, caller domain.CallerIdentity, requestID string) (*domain.RentalRequest, error)

func (h *BookingHandler) decide(ctx context.Context, req *structpb.Struct, action requestAction) (*structpb.Struct, error) {
	requestID, err := requiredString(req, "request_id")
	if err != nil {
		return nil, err
	}

	rq, err := action(ctx, GetCallerFromContext(ctx), requestID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(mapRentalRequest(rq))
}

func (h *BookingHandler) TransitionRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	requestID, err := requiredString(req, "request_id")
	if err != nil {
		return nil, err
	}
	statusStr, err := requiredString(req, "status")
	if err != nil {
		return nil, err
	}
	st, err := domain.ParseRentalStatus(statusStr)
	if err != nil {
		return nil, toStatus(err)
	}

	rq, err := h.bookingSvc.Transition(ctx, GetCallerFromContext(ctx), requestID, st)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(mapRentalRequest(rq))
}

func (h *BookingHandler) UpdateRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	requestID, err := requiredString(req, "request_id")
	if err != nil {
		return nil, err
	}
	patch, err := patchFromStruct(req)
	if err != nil {
		return nil, toStatus(err)
	}

	rq, err := h.bookingSvc.UpdateRequest(ctx, GetCallerFromContext(ctx), requestID, patch)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(mapRentalRequest(rq))
}

func (h *BookingHandler) ListMyRentals(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	st, err := optionalStatus(req)
	if err != nil {
		return nil, toStatus(err)
	}

	requests, err := h.bookingSvc.ListMyRentals(ctx, GetCallerFromContext(ctx), st)
	if err != nil {
		return nil, toStatus(err)
	}
	return requestsToStruct(requests)
}

func (h *BookingHandler) ListMyLendings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	st, err := optionalStatus(req)
	if err != nil {
		return nil, toStatus(err)
	}

	requests, err := h.bookingSvc.ListMyLendings(ctx, GetCallerFromContext(ctx), st)
	if err != nil {
		return nil, toStatus(err)
	}
	return requestsToStruct(requests)
}
