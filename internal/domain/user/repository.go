package user

import (
	"context"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	ListByCompany(ctx context.Context, companyKey string, role Role) ([]User, error)
}
