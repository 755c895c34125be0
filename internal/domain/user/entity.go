package user

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

type Role string

const (
	RoleAdministrator Role = "admin"    // Registers the company, manages roster and leave
	RoleEmployee      Role = "employee" // Goes on duty, requests leave
)

func (r Role) IsValid() bool {
	return r == RoleAdministrator || r == RoleEmployee
}

// User is the canonical subject profile stored in the users collection.
type User struct {
	ID          string    `json:"uid" firestore:"uid"`
	Email       string    `json:"email" firestore:"email"`
	Name        string    `json:"name" firestore:"name"`
	Mobile      string    `json:"mobile" firestore:"mobile"`
	Department  string    `json:"department" firestore:"department"`
	Role        Role      `json:"role" firestore:"role"`
	CompanyName string    `json:"companyName" firestore:"companyName"`
	CompanyKey  string    `json:"companyKey" firestore:"companyKey"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}

func (u *User) IsAdministrator() bool {
	return u.Role == RoleAdministrator
}

// HasDutyProfile reports whether the profile carries what duty records need.
func (u *User) HasDutyProfile() bool {
	return u.ID != "" && strings.TrimSpace(u.Name) != "" && u.CompanyKey != ""
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID     string
	Email      string
	Role       Role
	CompanyKey string
}

func (p Principal) Capabilities() Capabilities {
	return CapabilitiesFor(p.Role)
}

// NormalizeCompanyKey folds case and collapses whitespace so "CM Labs" and
// " cm  labs" share a key.
func NormalizeCompanyKey(companyName string) string {
	return cases.Fold().String(strings.Join(strings.Fields(companyName), " "))
}
