package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/docstore"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CollectionCredentials holds one document per account, keyed by email.
const CollectionCredentials = "credentials"

type credential struct {
	SubjectID    string    `json:"subjectId" firestore:"subjectId"`
	Email        string    `json:"email" firestore:"email"`
	PasswordHash string    `json:"passwordHash" firestore:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
}

// LocalIdentityProvider keeps bcrypt password hashes in the document store.
type LocalIdentityProvider struct {
	auth.StateListeners
	store docstore.Store
	cost  int
	now   func() time.Time
	// signUp serializes account creation so an email is taken only once.
	signUp sync.Mutex
}

func NewLocalIdentityProvider(store docstore.Store, cost int) *LocalIdentityProvider {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &LocalIdentityProvider{store: store, cost: cost, now: time.Now}
}

var _ auth.IdentityProvider = (*LocalIdentityProvider)(nil)

// SignUp implements auth.IdentityProvider.
func (p *LocalIdentityProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !validator.IsValidEmail(email) {
		return "", auth.ErrInvalidEmail
	}
	if len(password) < auth.MinPasswordLength {
		return "", auth.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	p.signUp.Lock()
	defer p.signUp.Unlock()

	_, err = p.store.Get(ctx, CollectionCredentials, email)
	switch {
	case err == nil:
		return "", auth.ErrEmailInUse
	case !errors.Is(err, docstore.ErrDocumentNotFound):
		return "", apperr.Unavailable(err, "failed to look up account")
	}

	cred := credential{
		SubjectID:    uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    p.now(),
	}
	if err := p.store.Set(ctx, CollectionCredentials, email, cred, false); err != nil {
		return "", apperr.Unavailable(err, "failed to create account")
	}
	return cred.SubjectID, nil
}

// SignIn implements auth.IdentityProvider.
func (p *LocalIdentityProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	doc, err := p.store.Get(ctx, CollectionCredentials, email)
	if err != nil {
		if errors.Is(err, docstore.ErrDocumentNotFound) {
			return "", auth.ErrInvalidCredentials
		}
		return "", apperr.Unavailable(err, "failed to look up account")
	}
	var cred credential
	if err := doc.DataTo(&cred); err != nil {
		return "", fmt.Errorf("failed to decode account %s: %w", email, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", auth.ErrInvalidCredentials
	}

	p.Notify(auth.AuthState{SubjectID: cred.SubjectID, Event: auth.StateSignedIn, At: p.now()})
	return cred.SubjectID, nil
}

// SignOut implements auth.IdentityProvider.
func (p *LocalIdentityProvider) SignOut(ctx context.Context, subjectID string) error {
	p.Notify(auth.AuthState{SubjectID: subjectID, Event: auth.StateSignedOut, At: p.now()})
	return nil
}
