package jwt

import (
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenLifetime = 5 * time.Minute
)

type Service interface {
	GenerateAccessToken(principal user.Principal) (token string, expiresAt int64, err error)
	GenerateSSEToken(principal user.Principal) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (user.Principal, error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
	// PruneRevoked forgets revoked tokens that have expired anyway and returns
	// how many were dropped.
	PruneRevoked() int
}

type JWTService struct {
	accessTokenLifetime time.Duration
	tokenAuth           *jwtauth.JWTAuth
	revokedTokens       map[string]int64
	mu                  sync.RWMutex
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	lifetime, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, err
	}
	return &JWTService{
		accessTokenLifetime: lifetime,
		tokenAuth:           jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:       make(map[string]int64),
	}, nil
}

func (j *JWTService) GenerateAccessToken(principal user.Principal) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenLifetime).Unix()

	claims := principalClaims(principal)
	claims["type"] = TokenTypeAccess
	claims["exp"] = expiresAt

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for SSE connections, which
// cannot send an Authorization header.
func (j *JWTService) GenerateSSEToken(principal user.Principal) (token string, expiresIn int, err error) {
	claims := principalClaims(principal)
	claims["type"] = TokenTypeSSE
	claims["exp"] = time.Now().Add(sseTokenLifetime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(claims)
	if err != nil {
		return "", 0, err
	}
	return tokenString, int(sseTokenLifetime.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns its principal.
func (j *JWTService) ValidateSSEToken(tokenString string) (user.Principal, error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return user.Principal{}, err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return user.Principal{}, jwt.ErrInvalidJWT()
	}

	claims := make(map[string]interface{})
	for _, name := range []string{"user_id", "email", "role", "company_key"} {
		if v, ok := token.Get(name); ok {
			claims[name] = v
		}
	}
	principal, ok := PrincipalFromClaims(claims)
	if !ok {
		return user.Principal{}, jwt.ErrInvalidJWT()
	}
	return principal, nil
}

func (j *JWTService) RevokeToken(token string) {
	expiresAt := time.Now().Add(j.accessTokenLifetime).Unix()
	if parsed, err := j.tokenAuth.Decode(token); err == nil && !parsed.Expiration().IsZero() {
		expiresAt = parsed.Expiration().Unix()
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = expiresAt
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

func (j *JWTService) PruneRevoked() int {
	now := time.Now().Unix()

	j.mu.Lock()
	defer j.mu.Unlock()
	pruned := 0
	for token, expiresAt := range j.revokedTokens {
		if expiresAt < now {
			delete(j.revokedTokens, token)
			pruned++
		}
	}
	return pruned
}

func principalClaims(p user.Principal) map[string]interface{} {
	return map[string]interface{}{
		"user_id":     p.UserID,
		"email":       p.Email,
		"role":        string(p.Role),
		"company_key": p.CompanyKey,
	}
}

// PrincipalFromClaims reads the principal out of decoded token claims.
func PrincipalFromClaims(claims map[string]interface{}) (user.Principal, bool) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.Principal{}, false
	}
	role, ok := claims["role"].(string)
	if !ok || !user.Role(role).IsValid() {
		return user.Principal{}, false
	}
	email, _ := claims["email"].(string)
	companyKey, _ := claims["company_key"].(string)
	return user.Principal{
		UserID:     userID,
		Email:      email,
		Role:       user.Role(role),
		CompanyKey: companyKey,
	}, true
}
