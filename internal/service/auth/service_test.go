package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/duty"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/docstore"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/location"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/document"
	dutyservice "github.com/cmlabs-hris/attendance-backend-go/internal/service/duty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-jwt"

type authFixture struct {
	store    *docstore.Memory
	users    user.UserRepository
	identity *LocalIdentityProvider
	jwt      jwt.Service
	provider *location.Provider
	duty     duty.DutyService
	svc      auth.AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := docstore.NewMemory()
	f := &authFixture{
		store:    store,
		users:    document.NewUserRepository(store),
		identity: NewLocalIdentityProvider(store, bcrypt.MinCost),
		provider: location.NewProvider(time.Now),
	}
	var err error
	f.jwt, err = jwt.NewJWTService(testSecret, "1h")
	require.NoError(t, err)
	f.duty = dutyservice.NewDutyService(f.users, document.NewAttendanceRepository(store), document.NewDutyStatusRepository(store),
		f.provider, nil, duty.WatchOptions{}, time.UTC, time.Now)
	f.svc = NewAuthService(f.users, f.jwt, f.identity, f.duty)
	return f
}

func (f *authFixture) createEmployee(t *testing.T, email string) user.Principal {
	t.Helper()
	ctx := context.Background()
	id, err := f.identity.SignUp(ctx, email, "password123")
	require.NoError(t, err)
	_, err = f.users.Create(ctx, user.User{ID: id, Email: email, Name: "Budi", Role: user.RoleEmployee, CompanyKey: "cm labs"})
	require.NoError(t, err)
	return user.Principal{UserID: id, Email: email, Role: user.RoleEmployee, CompanyKey: "cm labs"}
}

func TestLocalIdentityProvider_SignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	p := NewLocalIdentityProvider(docstore.NewMemory(), bcrypt.MinCost)

	var mu sync.Mutex
	var events []auth.StateEvent
	unsubscribe := p.OnAuthStateChange(func(s auth.AuthState) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, s.Event)
	})
	defer unsubscribe()

	id, err := p.SignUp(ctx, "Ana@Example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = p.SignUp(ctx, "ana@example.com", "another1")
	assert.ErrorIs(t, err, auth.ErrEmailInUse)
	_, err = p.SignUp(ctx, "not-an-email", "secret1")
	assert.ErrorIs(t, err, auth.ErrInvalidEmail)
	_, err = p.SignUp(ctx, "bob@example.com", "12345")
	assert.ErrorIs(t, err, auth.ErrWeakPassword)

	got, err := p.SignIn(ctx, " ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = p.SignIn(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = p.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	require.NoError(t, p.SignOut(ctx, id))
	assert.Equal(t, []auth.StateEvent{auth.StateSignedIn, auth.StateSignedOut}, events)
}

func TestAuthService_Register_Success(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	resp, err := f.svc.Register(ctx, auth.RegisterRequest{
		Name:        "Ana",
		Email:       "ana@cmlabs.co",
		Password:    "secret1",
		CompanyName: "  CM   Labs ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "admin", resp.User.Role)

	profile, err := f.users.GetByID(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "cm labs", profile.CompanyKey)
	assert.True(t, profile.IsAdministrator())

	_, err = f.svc.Register(ctx, auth.RegisterRequest{Name: "Ana", Email: "ana@cmlabs.co", Password: "secret1", CompanyName: "CM Labs"})
	assert.ErrorIs(t, err, auth.ErrEmailInUse)
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), auth.RegisterRequest{Email: "ana@cmlabs.co", Password: "123"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "password")
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	employee := f.createEmployee(t, "budi@cmlabs.co")

	resp, err := f.svc.Login(ctx, auth.LoginRequest{Email: "BUDI@cmlabs.co", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, employee.UserID, resp.User.ID)

	decoded, err := f.jwt.JWTAuth().Decode(resp.AccessToken)
	require.NoError(t, err)
	claims, err := decoded.AsMap(ctx)
	require.NoError(t, err)
	principal, ok := jwt.PrincipalFromClaims(claims)
	require.True(t, ok)
	assert.Equal(t, employee, principal)

	_, err = f.svc.Login(ctx, auth.LoginRequest{Email: "budi@cmlabs.co", Password: "nope"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Login_MissingProfile(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	_, err := f.identity.SignUp(ctx, "ghost@cmlabs.co", "password123")
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, auth.LoginRequest{Email: "ghost@cmlabs.co", Password: "password123"})
	assert.ErrorIs(t, err, user.ErrProfileIncomplete)
}

func TestAuthService_Logout_WhileOnDuty(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	employee := f.createEmployee(t, "budi@cmlabs.co")

	resp, err := f.svc.Login(ctx, auth.LoginRequest{Email: "budi@cmlabs.co", Password: "password123"})
	require.NoError(t, err)

	f.provider.SetPermission(employee.UserID, true)
	_, err = f.duty.StartDuty(ctx, employee)
	require.NoError(t, err)

	err = f.svc.Logout(ctx, employee, resp.AccessToken, auth.LogoutRequest{})
	assert.ErrorIs(t, err, duty.ErrSignOutConfirmation)
	assert.False(t, f.jwt.IsTokenRevoked(resp.AccessToken))

	var signedOut []string
	unsubscribe := f.identity.OnAuthStateChange(func(s auth.AuthState) {
		if s.Event == auth.StateSignedOut {
			signedOut = append(signedOut, s.SubjectID)
		}
	})
	defer unsubscribe()

	require.NoError(t, f.svc.Logout(ctx, employee, resp.AccessToken, auth.LogoutRequest{Confirm: true}))
	assert.True(t, f.jwt.IsTokenRevoked(resp.AccessToken))
	assert.Equal(t, []string{employee.UserID}, signedOut)

	status, err := f.duty.Status(ctx, employee)
	require.NoError(t, err)
	assert.Equal(t, duty.StateOffDuty, status.State)
}

func TestAuthService_MeAndSSEToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	employee := f.createEmployee(t, "budi@cmlabs.co")

	me, err := f.svc.Me(ctx, employee)
	require.NoError(t, err)
	assert.Equal(t, "Budi", me.Name)

	_, err = f.svc.Me(ctx, user.Principal{UserID: "ghost", Role: user.RoleEmployee})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	token, err := f.svc.IssueSSEToken(ctx, employee)
	require.NoError(t, err)
	principal, err := f.jwt.ValidateSSEToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, employee, principal)
}
