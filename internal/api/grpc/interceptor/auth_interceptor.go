package interceptor

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"rental-booking-engine/internal/config"
	"rental-booking-engine/internal/security"
)

// Metadata keys the interceptor owns. Client-sent values are always replaced.
const (
	userIDKey   = "user-id"
	userRoleKey = "user-role"
)

type AuthInterceptor struct {
	tokenManager security.TokenManager
}

func NewAuthInterceptor(tm security.TokenManager) *AuthInterceptor {
	return &AuthInterceptor{tokenManager: tm}
}

// Unary returns a server interceptor function to authenticate and authorize unary RPCs
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		level := config.GetSecurityLevel(info.FullMethod)

		// Public endpoint: a valid token is still honoured, anything else runs anonymously
		if level == config.SecurityPublic {
			token, err := i.extractToken(ctx)
			if err != nil {
				return handler(withIdentity(ctx, nil), req)
			}
			claims, err := i.tokenManager.ValidateToken(token)
			if err != nil {
				return handler(withIdentity(ctx, nil), req)
			}
			return handler(withIdentity(ctx, claims), req)
		}

		token, err := i.extractToken(ctx)
		if err != nil {
			return nil, err
		}

		claims, err := i.tokenManager.ValidateToken(token)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}

		if err := i.checkSecurityLevel(level, claims); err != nil {
			return nil, err
		}

		return handler(withIdentity(ctx, claims), req)
	}
}

// withIdentity copies the incoming metadata and sets, or clears, the caller
// headers from the validated claims.
func withIdentity(ctx context.Context, claims *security.UserClaims) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(nil)
	} else {
		md = md.Copy()
	}

	md.Delete(userIDKey)
	md.Delete(userRoleKey)
	if claims != nil {
		identity := claims.Identity()
		md.Set(userIDKey, identity.ID)
		md.Set(userRoleKey, string(identity.Role))
	}
	return metadata.NewIncomingContext(ctx, md)
}

func (i *AuthInterceptor) extractToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "metadata is not provided")
	}

	authHeader := md["authorization"]
	if len(authHeader) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}

	token := authHeader[0]
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}

	return token, nil
}

func (i *AuthInterceptor) checkSecurityLevel(level config.SecurityLevel, claims *security.UserClaims) error {
	if level == config.SecurityAccess && claims.Type != security.TokenTypeAccess {
		return status.Error(codes.PermissionDenied, "access token required")
	}
	return nil
}
