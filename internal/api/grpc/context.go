package grpc

import (
	"context"

	"google.golang.org/grpc/metadata"

	"rental-booking-engine/internal/domain"
)

// Metadata keys set by the auth interceptor.
const (
	MetadataUserID   = "user-id"
	MetadataUserRole = "user-role"
)

// GetCallerFromContext reads the caller identity injected by the auth
// interceptor. Calls without a "user-id" header resolve to an anonymous
// caller; the service decides whether the action allows that.
func GetCallerFromContext(ctx context.Context) domain.CallerIdentity {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return domain.CallerIdentity{}
	}

	caller := domain.CallerIdentity{Role: domain.RoleUser}
	if ids := md.Get(MetadataUserID); len(ids) > 0 {
		caller.ID = ids[0]
	}
	if roles := md.Get(MetadataUserRole); len(roles) > 0 && domain.Role(roles[0]) == domain.RoleAdmin {
		caller.Role = domain.RoleAdmin
	}
	if caller.ID == "" {
		return domain.CallerIdentity{}
	}
	return caller
}
