package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

const bookingService = "/rental.booking.v1.BookingService/"

// EndpointSecurityConfig maps methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Public calendar reads
	bookingService + "CheckAvailability": SecurityPublic,
	bookingService + "ListBlocks":        SecurityPublic,

	// Calendar management
	bookingService + "AddBlock":    SecurityAccess,
	bookingService + "RemoveBlock": SecurityAccess,

	// Rental requests
	bookingService + "RequestBooking":    SecurityAccess,
	bookingService + "ApproveRequest":    SecurityAccess,
	bookingService + "DeclineRequest":    SecurityAccess,
	bookingService + "CancelRequest":     SecurityAccess,
	bookingService + "TransitionRequest": SecurityAccess,
	bookingService + "UpdateRequest":     SecurityAccess,
	bookingService + "GetRequest":        SecurityAccess,
	bookingService + "ListMyRentals":     SecurityAccess,
	bookingService + "ListMyLendings":    SecurityAccess,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
