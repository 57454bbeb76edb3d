package domain

// Item is the directory view of a rentable listing. The listing itself lives
// outside this service; only ownership and booking mode are needed here.
type Item struct {
	ID             string `json:"id"`
	OwnerID        string `json:"owner_id"`
	InstantBooking bool   `json:"instant_booking"`
}
