package duty

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type PermissionRequest struct {
	Granted bool `json:"granted"`
}

type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r *LocationRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidCoordinate(r.Latitude, r.Longitude) {
		errs.Add("location", "latitude must be within [-90, 90] and longitude within [-180, 180]")
	}
	return errs.Err()
}

func (r LocationRequest) Coordinate() attendance.Coordinate {
	return attendance.Coordinate{Latitude: r.Latitude, Longitude: r.Longitude}
}

type SignOutRequest struct {
	Confirm bool `json:"confirm"`
}

type DutyStatusResponse struct {
	SubjectID       string                      `json:"subject_id"`
	State           State                       `json:"state"`
	IsActive        bool                        `json:"is_active"`
	Status          StatusValue                 `json:"status"`
	CurrentLocation *attendance.Coordinate      `json:"current_location,omitempty"`
	LastUpdated     *string                     `json:"last_updated,omitempty"`
	OpenSession     *attendance.SessionResponse `json:"open_session,omitempty"`
}

func ToResponse(s DutyStatus) DutyStatusResponse {
	resp := DutyStatusResponse{
		SubjectID:       s.SubjectID,
		State:           s.State(),
		IsActive:        s.IsActive,
		Status:          s.Status,
		CurrentLocation: s.CurrentLocation,
	}
	if resp.Status == "" {
		resp.Status = StatusOffDuty
	}
	if !s.LastUpdated.IsZero() {
		ts := s.LastUpdated.Format(time.RFC3339)
		resp.LastUpdated = &ts
	}
	return resp
}
