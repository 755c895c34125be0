package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/duty"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
)

type AuthServiceImpl struct {
	user.UserRepository
	jwt.Service
	identity auth.IdentityProvider
	duty     duty.DutyService
	now      func() time.Time
}

func NewAuthService(userRepository user.UserRepository, jwtService jwt.Service, identity auth.IdentityProvider, dutyService duty.DutyService) auth.AuthService {
	return &AuthServiceImpl{
		UserRepository: userRepository,
		Service:        jwtService,
		identity:       identity,
		duty:           dutyService,
		now:            time.Now,
	}
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	subjectID, err := a.identity.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	profile, err := a.UserRepository.Create(ctx, user.User{
		ID:          subjectID,
		Email:       req.Email,
		Name:        req.Name,
		Mobile:      req.Mobile,
		Role:        user.RoleAdministrator,
		CompanyName: req.CompanyName,
		CompanyKey:  user.NormalizeCompanyKey(req.CompanyName),
		CreatedAt:   a.now(),
	})
	if err != nil {
		slog.Error("account created without profile", "subject_id", subjectID, "error", err)
		return auth.TokenResponse{}, apperr.Unavailable(err, "failed to create profile")
	}

	if _, err := a.identity.SignIn(ctx, req.Email, req.Password); err != nil {
		return auth.TokenResponse{}, err
	}
	return a.issue(profile)
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	subjectID, err := a.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	profile, err := a.UserRepository.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, user.ErrProfileIncomplete
		}
		return auth.TokenResponse{}, apperr.Unavailable(err, "failed to load profile")
	}
	return a.issue(profile)
}

func (a *AuthServiceImpl) issue(profile user.User) (auth.TokenResponse, error) {
	principal := user.Principal{
		UserID:     profile.ID,
		Email:      profile.Email,
		Role:       profile.Role,
		CompanyKey: profile.CompanyKey,
	}
	token, expiresAt, err := a.Service.GenerateAccessToken(principal)
	if err != nil {
		return auth.TokenResponse{}, apperr.Wrap(apperr.KindInternal, err, "failed to create access token")
	}
	return auth.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user.ToResponse(profile),
	}, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, actor user.Principal, accessToken string, req auth.LogoutRequest) error {
	if err := a.duty.SignOut(ctx, actor, req.Confirm); err != nil {
		return err
	}
	if err := a.identity.SignOut(ctx, actor.UserID); err != nil {
		return apperr.Unavailable(err, "failed to sign out")
	}
	if accessToken != "" {
		a.Service.RevokeToken(accessToken)
	}
	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context, actor user.Principal) (user.UserResponse, error) {
	if err := actor.Capabilities().Require(user.PermissionProfileViewOwn); err != nil {
		return user.UserResponse{}, err
	}
	profile, err := a.UserRepository.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.UserResponse{}, err
		}
		return user.UserResponse{}, apperr.Unavailable(err, "failed to load profile")
	}
	return user.ToResponse(profile), nil
}

// IssueSSEToken implements auth.AuthService.
func (a *AuthServiceImpl) IssueSSEToken(ctx context.Context, actor user.Principal) (auth.SSETokenResponse, error) {
	token, expiresIn, err := a.Service.GenerateSSEToken(actor)
	if err != nil {
		return auth.SSETokenResponse{}, apperr.Wrap(apperr.KindInternal, err, "failed to create sse token")
	}
	return auth.SSETokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}
