package service

import (
	"context"
	"fmt"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/logger"
)

type bookingService struct {
	admission    AdmissionPolicy
	calendar     BlockedCalendar
	ledger       RentalRequestLedger
	availability AvailabilityChecker
	lifecycle    BookingLifecycleController
}

func NewBookingService(
	admission AdmissionPolicy,
	calendar BlockedCalendar,
	ledger RentalRequestLedger,
	availability AvailabilityChecker,
	lifecycle BookingLifecycleController,
) BookingService {
	return &bookingService{
		admission:    admission,
		calendar:     calendar,
		ledger:       ledger,
		availability: availability,
		lifecycle:    lifecycle,
	}
}

func (s *bookingService) CheckAvailability(ctx context.Context, caller domain.CallerIdentity, itemID string, c Candidate) (*Availability, error) {
	if _, err := s.admission.Admit(ctx, caller, ActionCheckAvailability, itemID); err != nil {
		return nil, err
	}
	return s.availability.IsAvailable(ctx, itemID, c)
}

func (s *bookingService) ListBlocks(ctx context.Context, caller domain.CallerIdentity, itemID string) ([]domain.BlockedDateRange, error) {
	if _, err := s.admission.Admit(ctx, caller, ActionViewCalendar, itemID); err != nil {
		return nil, err
	}
	return s.calendar.ListBlocks(ctx, itemID)
}

func (s *bookingService) AddBlock(ctx context.Context, caller domain.CallerIdentity, itemID string, r domain.DateRange, reason domain.BlockReason) (*domain.BlockedDateRange, error) {
	logger.EnterMethod("bookingService.AddBlock", "callerID", caller.ID, "itemID", itemID, "reason", reason)

	if _, err := s.admission.Admit(ctx, caller, ActionManageCalendar, itemID); err != nil {
		logger.ExitMethodWithError("bookingService.AddBlock", err, "itemID", itemID)
		return nil, err
	}
	if reason == domain.BlockReasonRented {
		err := fmt.Errorf("%w: rented blocks are created by approval", domain.ErrInvalidReason)
		logger.ExitMethodWithError("bookingService.AddBlock", err, "itemID", itemID)
		return nil, err
	}

	block, err := s.calendar.AddBlock(ctx, itemID, r, reason, "")
	if err != nil {
		logger.ExitMethodWithError("bookingService.AddBlock", err, "itemID", itemID)
		return nil, err
	}

	logger.ExitMethod("bookingService.AddBlock", "itemID", itemID, "blockID", block.ID)
	return block, nil
}

// RemoveBlock succeeds for blocks that are already gone. A block id that
// belongs to another item is treated as absent.
func (s *bookingService) RemoveBlock(ctx context.Context, caller domain.CallerIdentity, itemID, blockID string) (bool, error) {
	if _, err := s.admission.Admit(ctx, caller, ActionManageCalendar, itemID); err != nil {
		return false, err
	}

	blocks, err := s.calendar.ListBlocks(ctx, itemID)
	if err != nil {
		return false, err
	}
	for _, b := range blocks {
		if b.ID == blockID {
			return s.calendar.RemoveBlock(ctx, blockID)
		}
	}
	return true, nil
}

// RequestBooking checks availability and then creates the request. The two
// steps are not atomic.
func (s *bookingService) RequestBooking(ctx context.Context, caller domain.CallerIdentity, in BookingRequest) (*domain.RentalRequest, error) {
	logger.EnterMethod("bookingService.RequestBooking", "callerID", caller.ID, "itemID", in.ItemID, "range", in.Range.String())

	item, err := s.admission.Admit(ctx, caller, ActionRequestBooking, in.ItemID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.RequestBooking", err, "itemID", in.ItemID)
		return nil, err
	}

	status := in.Status
	switch status {
	case "":
		status = domain.RentalStatusPending
	case domain.RentalStatusPending, domain.RentalStatusInquiry:
	case domain.RentalStatusApproved:
		if !item.InstantBooking {
			err := fmt.Errorf("%w: item %s does not allow instant booking", domain.ErrForbidden, item.ID)
			logger.ExitMethodWithError("bookingService.RequestBooking", err, "itemID", in.ItemID)
			return nil, err
		}
	default:
		err := fmt.Errorf("%w: cannot open a request as %q", domain.ErrInvalidStatus, status)
		logger.ExitMethodWithError("bookingService.RequestBooking", err, "itemID", in.ItemID)
		return nil, err
	}

	if in.Range.IsEmptyOrInverted() {
		err := fmt.Errorf("%w: request %s must end after it starts", domain.ErrInvalidRange, in.Range)
		logger.ExitMethodWithError("bookingService.RequestBooking", err, "itemID", in.ItemID)
		return nil, err
	}

	avail, err := s.availability.IsAvailable(ctx, in.ItemID, RangeCandidate(in.Range))
	if err != nil {
		logger.ExitMethodWithError("bookingService.RequestBooking", err, "itemID", in.ItemID)
		return nil, err
	}
	if !avail.Available {
		err := fmt.Errorf("%w: item %s is taken on %s", domain.ErrConflict, in.ItemID, domain.FormatDay(*avail.ConflictDay))
		logger.ExitMethodWithError("bookingService.RequestBooking", err, "itemID", in.ItemID)
		return nil, err
	}

	params := CreateRequestParams{
		ItemID:           in.ItemID,
		RenterID:         caller.ID,
		OwnerID:          item.OwnerID,
		Range:            in.Range,
		TotalAmountCents: in.TotalAmountCents,
		Message:          in.Message,
		Status:           status,
	}
	var rq *domain.RentalRequest
	if status == domain.RentalStatusApproved {
		rq, err = s.lifecycle.CreateWithAutoApprove(ctx, params)
	} else {
		rq, err = s.lifecycle.RequestBooking(ctx, params)
	}
	if err != nil {
		logger.ExitMethodWithError("bookingService.RequestBooking", err, "itemID", in.ItemID)
		return nil, err
	}

	logger.ExitMethod("bookingService.RequestBooking", "requestID", rq.ID, "status", rq.Status)
	return rq, nil
}

func (s *bookingService) Approve(ctx context.Context, caller domain.CallerIdentity, requestID string) (*domain.RentalRequest, error) {
	return s.Transition(ctx, caller, requestID, domain.RentalStatusApproved)
}

func (s *bookingService) Decline(ctx context.Context, caller domain.CallerIdentity, requestID string) (*domain.RentalRequest, error) {
	return s.Transition(ctx, caller, requestID, domain.RentalStatusDeclined)
}

func (s *bookingService) Cancel(ctx context.Context, caller domain.CallerIdentity, requestID string) (*domain.RentalRequest, error) {
	return s.Transition(ctx, caller, requestID, domain.RentalStatusCancelled)
}

func (s *bookingService) Transition(ctx context.Context, caller domain.CallerIdentity, requestID string, status domain.RentalStatus) (*domain.RentalRequest, error) {
	logger.EnterMethod("bookingService.Transition", "callerID", caller.ID, "requestID", requestID, "status", status)

	rq, err := s.ledger.Get(ctx, requestID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.Transition", err, "requestID", requestID)
		return nil, err
	}
	if err := s.authorizeStatus(ctx, caller, rq, status); err != nil {
		logger.ExitMethodWithError("bookingService.Transition", err, "requestID", requestID)
		return nil, err
	}

	rq, err = s.lifecycle.Transition(ctx, requestID, status)
	if err != nil {
		logger.ExitMethodWithError("bookingService.Transition", err, "requestID", requestID)
		return nil, err
	}

	logger.ExitMethod("bookingService.Transition", "requestID", requestID, "status", rq.Status)
	return rq, nil
}

func (s *bookingService) UpdateRequest(ctx context.Context, caller domain.CallerIdentity, requestID string, patch domain.RentalRequestPatch) (*domain.RentalRequest, error) {
	rq, err := s.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := authorizeParty(caller, rq); err != nil {
		return nil, err
	}
	if patch.Status != nil {
		if err := s.authorizeStatus(ctx, caller, rq, *patch.Status); err != nil {
			return nil, err
		}
	}
	return s.lifecycle.Update(ctx, requestID, patch)
}

func (s *bookingService) GetRequest(ctx context.Context, caller domain.CallerIdentity, requestID string) (*domain.RentalRequest, error) {
	rq, err := s.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := authorizeParty(caller, rq); err != nil {
		return nil, err
	}
	return rq, nil
}

func (s *bookingService) ListMyRentals(ctx context.Context, caller domain.CallerIdentity, status *domain.RentalStatus) ([]domain.RentalRequest, error) {
	if !caller.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.ledger.ListByRenter(ctx, caller.ID, status)
}

func (s *bookingService) ListMyLendings(ctx context.Context, caller domain.CallerIdentity, status *domain.RentalStatus) ([]domain.RentalRequest, error) {
	if !caller.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.ledger.ListByOwner(ctx, caller.ID, status)
}

// authorizeStatus decides who may move a request into the target status:
// owner decisions go through the admission policy, paying is the renter's,
// everything else is open to either party.
func (s *bookingService) authorizeStatus(ctx context.Context, caller domain.CallerIdentity, rq *domain.RentalRequest, status domain.RentalStatus) error {
	switch status {
	case domain.RentalStatusApproved, domain.RentalStatusDeclined, domain.RentalStatusCompleted:
		_, err := s.admission.Admit(ctx, caller, ActionDecideRequest, rq.ItemID)
		return err
	case domain.RentalStatusPaid:
		if rq.RenterID != caller.ID && !caller.IsAdmin() {
			return fmt.Errorf("%w: only the renter can mark request %s paid", domain.ErrForbidden, rq.ID)
		}
		return nil
	case domain.RentalStatusCancelled:
		if _, err := s.admission.Admit(ctx, caller, ActionCancelRequest, rq.ItemID); err != nil {
			return err
		}
	}
	return authorizeParty(caller, rq)
}

func authorizeParty(caller domain.CallerIdentity, rq *domain.RentalRequest) error {
	if !caller.IsAuthenticated() {
		return domain.ErrUnauthenticated
	}
	if !rq.IsParty(caller.ID) && !caller.IsAdmin() {
		return fmt.Errorf("%w: not a party to request %s", domain.ErrForbidden, rq.ID)
	}
	return nil
}
