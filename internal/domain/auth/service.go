package auth

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type AuthService interface {
	// Register signs up a company administrator.
	Register(ctx context.Context, req RegisterRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	// Logout settles duty for employees, signs out at the identity provider
	// and revokes the access token.
	Logout(ctx context.Context, actor user.Principal, accessToken string, req LogoutRequest) error
	Me(ctx context.Context, actor user.Principal) (user.UserResponse, error)
	IssueSSEToken(ctx context.Context, actor user.Principal) (SSETokenResponse, error)
}
