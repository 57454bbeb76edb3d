package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/logger"
	"rental-booking-engine/internal/repository"
)

type blockedCalendar struct {
	blocks repository.BlockRepository
	newID  func() string
}

func NewBlockedCalendar(blocks repository.BlockRepository) BlockedCalendar {
	return &blockedCalendar{blocks: blocks, newID: uuid.NewString}
}

func (c *blockedCalendar) ListBlocks(ctx context.Context, itemID string) ([]domain.BlockedDateRange, error) {
	return c.blocks.ListByItem(ctx, itemID)
}

// AddBlock persists a new block unless it overlaps an existing block of the
// same item. requestID is only kept for rented blocks.
func (c *blockedCalendar) AddBlock(ctx context.Context, itemID string, r domain.DateRange, reason domain.BlockReason, requestID string) (*domain.BlockedDateRange, error) {
	if !reason.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidReason, reason)
	}
	if r.IsEmptyOrInverted() {
		return nil, fmt.Errorf("%w: block %s must end after it starts", domain.ErrInvalidRange, r)
	}
	if reason != domain.BlockReasonRented {
		requestID = ""
	}

	block := &domain.BlockedDateRange{
		ID:        c.newID(),
		ItemID:    itemID,
		Range:     r,
		Reason:    reason,
		RequestID: requestID,
	}
	if err := c.blocks.CreateIfFree(ctx, block); err != nil {
		return nil, err
	}
	return block, nil
}

// RemoveBlock always reports success for an absent block.
func (c *blockedCalendar) RemoveBlock(ctx context.Context, blockID string) (bool, error) {
	removed, err := c.blocks.Delete(ctx, blockID)
	if err != nil {
		return false, err
	}
	if !removed {
		logger.Debug("Block already absent", "block_id", blockID)
	}
	return true, nil
}

func (c *blockedCalendar) HasConflict(ctx context.Context, itemID string, r domain.DateRange) (bool, error) {
	overlapping, err := c.blocks.ListOverlapping(ctx, itemID, r)
	if err != nil {
		return false, err
	}
	return len(overlapping) > 0, nil
}

func (c *blockedCalendar) ReleaseForRequest(ctx context.Context, requestID string) (int64, error) {
	if requestID == "" {
		return 0, nil
	}
	return c.blocks.DeleteByRequest(ctx, requestID)
}
