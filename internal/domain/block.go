package domain

import "time"

type BlockReason string

const (
	BlockReasonOwnerUse    BlockReason = "owner_use"
	BlockReasonMaintenance BlockReason = "maintenance"
	BlockReasonRented      BlockReason = "rented"
	BlockReasonOther       BlockReason = "other"
)

func (r BlockReason) IsValid() bool {
	switch r {
	case BlockReasonOwnerUse, BlockReasonMaintenance, BlockReasonRented, BlockReasonOther:
		return true
	}
	return false
}

// BlockedDateRange is an explicit interval during which an item cannot be booked.
type BlockedDateRange struct {
	ID     string      `json:"id"`
	ItemID string      `json:"item_id"`
	Range  DateRange   `json:"range"`
	Reason BlockReason `json:"reason"`
	// RequestID names the rental request an auto-block was materialized for.
	RequestID string    `json:"request_id,omitempty"`
	CreatedOn time.Time `json:"created_on"`
}

// OwnedBy reports whether the block was materialized for the given request.
func (b *BlockedDateRange) OwnedBy(requestID string) bool {
	return requestID != "" && b.Reason == BlockReasonRented && b.RequestID == requestID
}
