package domain

import (
	"fmt"
	"time"
)

type RentalStatus string

const (
	RentalStatusInquiry   RentalStatus = "inquiry"
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusApproved  RentalStatus = "approved"
	RentalStatusDeclined  RentalStatus = "declined"
	RentalStatusPaid      RentalStatus = "paid"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

// ActiveStatuses are the statuses that occupy the requested dates.
var ActiveStatuses = []RentalStatus{
	RentalStatusPending,
	RentalStatusApproved,
	RentalStatusPaid,
}

// allowedTransitions is the lifecycle graph. Re-entering the current status
// is always allowed so retried operations converge.
var allowedTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusInquiry:   {RentalStatusPending, RentalStatusApproved, RentalStatusDeclined, RentalStatusCancelled},
	RentalStatusPending:   {RentalStatusApproved, RentalStatusDeclined, RentalStatusCancelled},
	RentalStatusApproved:  {RentalStatusPaid, RentalStatusCompleted, RentalStatusDeclined, RentalStatusCancelled},
	RentalStatusPaid:      {RentalStatusCompleted, RentalStatusCancelled},
	RentalStatusDeclined:  {},
	RentalStatusCompleted: {},
	RentalStatusCancelled: {},
}

func (s RentalStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// IsActive reports whether a request in this status blocks its dates.
func (s RentalStatus) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

func (s RentalStatus) IsTerminal() bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

func (s RentalStatus) CanTransitionTo(target RentalStatus) bool {
	if !target.IsValid() {
		return false
	}
	if s == target {
		return true
	}
	for _, t := range allowedTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func ParseRentalStatus(s string) (RentalStatus, error) {
	status := RentalStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

type RentalRequest struct {
	ID               string       `json:"id"`
	ItemID           string       `json:"item_id"`
	RenterID         string       `json:"renter_id"`
	OwnerID          string       `json:"owner_id"`
	Range            DateRange    `json:"range"`
	TotalAmountCents int64        `json:"total_amount_cents"`
	Message          *string      `json:"message,omitempty"`
	Status           RentalStatus `json:"status"`
	CreatedOn        time.Time    `json:"created_on"`
	UpdatedOn        time.Time    `json:"updated_on"`
}

// IsParty reports whether the user is the renter or the owner of the request.
func (r *RentalRequest) IsParty(userID string) bool {
	return userID != "" && (r.RenterID == userID || r.OwnerID == userID)
}

// RentalRequestPatch carries the mutable fields of a request. Nil fields are left untouched.
type RentalRequestPatch struct {
	StartDate        *time.Time
	EndDate          *time.Time
	TotalAmountCents *int64
	Message          *string
	Status           *RentalStatus
}

func (p RentalRequestPatch) ChangesDates() bool {
	return p.StartDate != nil || p.EndDate != nil
}

// ApplyRange returns r with the patched start and end applied.
func (p RentalRequestPatch) ApplyRange(r DateRange) DateRange {
	if p.StartDate != nil {
		r.Start = *p.StartDate
	}
	if p.EndDate != nil {
		r.End = *p.EndDate
	}
	return r
}

// RentalRequestFilter narrows list queries. Empty fields are ignored.
type RentalRequestFilter struct {
	ItemID          string
	RenterID        string
	OwnerID         string
	Statuses        []RentalStatus
	EndingOnOrAfter *time.Time
	EndingBefore    *time.Time
}
