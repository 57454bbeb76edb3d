package grpc

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/service"
)

// Request decoding

func fieldValue(in *structpb.Struct, name string) (*structpb.Value, bool) {
	if in == nil {
		return nil, false
	}
	v, ok := in.GetFields()[name]
	if !ok {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func optionalString(in *structpb.Struct, name string) (*string, error) {
	v, ok := fieldValue(in, name)
	if !ok {
		return nil, nil
	}
	s, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a string", name)
	}
	return &s.StringValue, nil
}

func requiredString(in *structpb.Struct, name string) (string, error) {
	s, err := optionalString(in, name)
	if err != nil {
		return "", err
	}
	if s == nil || *s == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	return *s, nil
}

func optionalInt64(in *structpb.Struct, name string) (*int64, error) {
	v, ok := fieldValue(in, name)
	if !ok {
		return nil, nil
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a whole number", name)
	}
	i := int64(f)
	return &i, nil
}

// parseInstant accepts RFC 3339 timestamps or YYYY-MM-DD days. A bare day
// used as an end bound means the last second of that day, so [D, D] is a
// valid one-day range.
func parseInstant(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	day, err := domain.ParseDay(s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return domain.DayBounds(day).End, nil
	}
	return day, nil
}

func optionalInstant(in *structpb.Struct, name string, endOfDay bool) (*time.Time, error) {
	s, err := optionalString(in, name)
	if err != nil || s == nil {
		return nil, err
	}
	t, err := parseInstant(*s, endOfDay)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func requiredRange(in *structpb.Struct) (domain.DateRange, error) {
	startStr, err := requiredString(in, "start_date")
	if err != nil {
		return domain.DateRange{}, err
	}
	endStr, err := requiredString(in, "end_date")
	if err != nil {
		return domain.DateRange{}, err
	}
	start, err := parseInstant(startStr, false)
	if err != nil {
		return domain.DateRange{}, err
	}
	end, err := parseInstant(endStr, true)
	if err != nil {
		return domain.DateRange{}, err
	}
	return domain.NewDateRange(start, end), nil
}

// candidateFromStruct reads either days[] or start_date/end_date.
func candidateFromStruct(in *structpb.Struct) (service.Candidate, error) {
	v, ok := fieldValue(in, "days")
	if !ok {
		r, err := requiredRange(in)
		if err != nil {
			return service.Candidate{}, err
		}
		return service.RangeCandidate(r), nil
	}

	list, isList := v.GetKind().(*structpb.Value_ListValue)
	if !isList {
		return service.Candidate{}, status.Error(codes.InvalidArgument, "days must be a list of dates")
	}
	days := make([]time.Time, 0, len(list.ListValue.GetValues()))
	for _, dv := range list.ListValue.GetValues() {
		s, isString := dv.GetKind().(*structpb.Value_StringValue)
		if !isString {
			return service.Candidate{}, status.Error(codes.InvalidArgument, "days must be a list of dates")
		}
		day, err := domain.ParseDay(s.StringValue)
		if err != nil {
			return service.Candidate{}, err
		}
		days = append(days, day)
	}
	return service.DaysCandidate(days...), nil
}

func optionalStatus(in *structpb.Struct) (*domain.RentalStatus, error) {
	s, err := optionalString(in, "status")
	if err != nil || s == nil || *s == "" {
		return nil, err
	}
	st, err := domain.ParseRentalStatus(*s)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func patchFromStruct(in *structpb.Struct) (domain.RentalRequestPatch, error) {
	var patch domain.RentalRequestPatch
	var err error

	if patch.StartDate, err = optionalInstant(in, "start_date", false); err != nil {
		return patch, err
	}
	if patch.EndDate, err = optionalInstant(in, "end_date", true); err != nil {
		return patch, err
	}
	if patch.TotalAmountCents, err = optionalInt64(in, "total_amount_cents"); err != nil {
		return patch, err
	}
	if patch.Message, err = optionalString(in, "message"); err != nil {
		return patch, err
	}
	if patch.Status, err = optionalStatus(in); err != nil {
		return patch, err
	}
	return patch, nil
}

// Response encoding

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func mapBlock(b *domain.BlockedDateRange) map[string]interface{} {
	m := map[string]interface{}{
		"id":         b.ID,
		"item_id":    b.ItemID,
		"start_date": domain.FormatDay(b.Range.Start),
		"end_date":   domain.FormatDay(b.Range.End),
		"reason":     string(b.Reason),
		"created_on": formatTimestamp(b.CreatedOn),
	}
	if b.RequestID != "" {
		m["request_id"] = b.RequestID
	}
	return m
}

func mapRentalRequest(rq *domain.RentalRequest) map[string]interface{} {
	m := map[string]interface{}{
		"id":                 rq.ID,
		"item_id":            rq.ItemID,
		"renter_id":          rq.RenterID,
		"owner_id":           rq.OwnerID,
		"start_date":         domain.FormatDay(rq.Range.Start),
		"end_date":           domain.FormatDay(rq.Range.End),
		"total_amount_cents": rq.TotalAmountCents,
		"status":             string(rq.Status),
		"created_on":         formatTimestamp(rq.CreatedOn),
		"updated_on":         formatTimestamp(rq.UpdatedOn),
	}
	if rq.Message != nil {
		m["message"] = *rq.Message
	}
	return m
}

func mapAvailability(a *service.Availability) map[string]interface{} {
	m := map[string]interface{}{"available": a.Available}
	if a.ConflictDay != nil {
		m["conflict_day"] = domain.FormatDay(*a.ConflictDay)
	}
	if a.ConflictSource != "" {
		m["conflict_source"] = a.ConflictSource
	}
	if a.ConflictID != "" {
		m["conflict_id"] = a.ConflictID
	}
	return m
}

func toStruct(m map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return s, nil
}

func blocksToStruct(blocks []domain.BlockedDateRange) (*structpb.Struct, error) {
	list := make([]interface{}, 0, len(blocks))
	for i := range blocks {
		list = append(list, mapBlock(&blocks[i]))
	}
	return toStruct(map[string]interface{}{"blocks": list})
}

func requestsToStruct(requests []domain.RentalRequest) (*structpb.Struct, error) {
	list := make([]interface{}, 0, len(requests))
	for i := range requests {
		list = append(list, mapRentalRequest(&requests[i]))
	}
	return toStruct(map[string]interface{}{"requests": list})
}
