package document

import (
	"context"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/docstore"
)

type userRepositoryImpl struct {
	store docstore.Store
}

func NewUserRepository(store docstore.Store) user.UserRepository {
	return &userRepositoryImpl{store: store}
}

func setUserID(u *user.User, id string) { u.ID = id }

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	doc, err := r.store.Get(ctx, CollectionUsers, id)
	if err != nil {
		return user.User{}, notFoundAs(err, user.ErrUserNotFound)
	}
	var u user.User
	if err := doc.DataTo(&u); err != nil {
		return user.User{}, fmt.Errorf("failed to decode user %s: %w", id, err)
	}
	u.ID = doc.ID()
	return u, nil
}

// Create implements user.UserRepository. The document id is the identity
// provider's subject id.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	if err := r.store.Set(ctx, CollectionUsers, newUser.ID, newUser, false); err != nil {
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return newUser, nil
}

// ListByCompany implements user.UserRepository, sorted by name.
func (r *userRepositoryImpl) ListByCompany(ctx context.Context, companyKey string, role user.Role) ([]user.User, error) {
	docs, err := r.store.Query(ctx, CollectionUsers, docstore.Eq("companyKey", companyKey), docstore.Eq("role", string(role)))
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	users, err := decodeAll(docs, setUserID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Name < users[j].Name
	})
	return users, nil
}
