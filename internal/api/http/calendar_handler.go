package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/service"
)

const (
	msgMissingRange = "either start and end, or days, is required"
)

// CalendarHandler serves the public, read-only calendar endpoints.
type CalendarHandler struct {
	bookingSvc service.BookingService
}

func NewCalendarHandler(bookingSvc service.BookingService) *CalendarHandler {
	return &CalendarHandler{bookingSvc: bookingSvc}
}

type availabilityResponse struct {
	ItemID         string  `json:"item_id"`
	Available      bool    `json:"available"`
	ConflictDay    *string `json:"conflict_day,omitempty"`
	ConflictSource string  `json:"conflict_source,omitempty"`
	ConflictID     string  `json:"conflict_id,omitempty"`
}

type blockResponse struct {
	ID        string `json:"id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
	RequestID string `json:"request_id,omitempty"`
}

type blocksResponse struct {
	ItemID string          `json:"item_id"`
	Blocks []blockResponse `json:"blocks"`
}

// HandleAvailability GET /v1/items/{itemID}/availability
// Query params: start and end (YYYY-MM-DD, inclusive) or days (comma separated)
func (h *CalendarHandler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["itemID"]

	candidate, err := candidateFromQuery(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	availability, err := h.bookingSvc.CheckAvailability(r.Context(), domain.CallerIdentity{}, itemID, candidate)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	resp := availabilityResponse{
		ItemID:         itemID,
		Available:      availability.Available,
		ConflictSource: availability.ConflictSource,
		ConflictID:     availability.ConflictID,
	}
	if availability.ConflictDay != nil {
		d := domain.FormatDay(*availability.ConflictDay)
		resp.ConflictDay = &d
	}
	RespondJSON(w, http.StatusOK, resp)
}

// HandleBlocks GET /v1/items/{itemID}/blocks
func (h *CalendarHandler) HandleBlocks(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["itemID"]

	blocks, err := h.bookingSvc.ListBlocks(r.Context(), domain.CallerIdentity{}, itemID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	resp := blocksResponse{ItemID: itemID, Blocks: make([]blockResponse, 0, len(blocks))}
	for _, b := range blocks {
		resp.Blocks = append(resp.Blocks, blockResponse{
			ID:        b.ID,
			StartDate: domain.FormatDay(b.Range.Start),
			EndDate:   domain.FormatDay(b.Range.End),
			Reason:    string(b.Reason),
			RequestID: b.RequestID,
		})
	}
	RespondJSON(w, http.StatusOK, resp)
}

func candidateFromQuery(r *http.Request) (service.Candidate, error) {
	q := r.URL.Query()

	if raw := q.Get("days"); raw != "" {
		var days []time.Time
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			d, err := domain.ParseDay(s)
			if err != nil {
				return service.Candidate{}, err
			}
			days = append(days, d)
		}
		return service.DaysCandidate(days...), nil
	}

	startStr, endStr := q.Get("start"), q.Get("end")
	if startStr == "" || endStr == "" {
		return service.Candidate{}, invalidRange(msgMissingRange)
	}
	start, err := domain.ParseDay(startStr)
	if err != nil {
		return service.Candidate{}, err
	}
	end, err := domain.ParseDay(endStr)
	if err != nil {
		return service.Candidate{}, err
	}
	return service.RangeCandidate(domain.NewDateRange(start, domain.DayBounds(end).End)), nil
}
