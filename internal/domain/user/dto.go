package user

import "time"

// UserResponse represents user data in API responses
type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Mobile      string `json:"mobile,omitempty"`
	Department  string `json:"department,omitempty"`
	Role        string `json:"role"`
	CompanyName string `json:"company_name"`
	CreatedAt   string `json:"created_at"`
}

func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Mobile:      u.Mobile,
		Department:  u.Department,
		Role:        string(u.Role),
		CompanyName: u.CompanyName,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}
