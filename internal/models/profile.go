package models

import (
	"fmt"
	"net/mail"
	"time"
)

// DateLayout is the wire format for date_of_birth.
const DateLayout = "2006-01-02"

// CreateUserRequest is the request body for creating a profile.
type CreateUserRequest struct {
	Username    string  `json:"username"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Location    *string `json:"location"`
	DateOfBirth *string `json:"date_of_birth"`
}

// UpdateUserRequest is the request body for updating a profile. All fields
// are optional; absent fields are left unchanged.
type UpdateUserRequest struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Location    *string `json:"location"`
	DateOfBirth *string `json:"date_of_birth"`
}

// ActivityRequest is the request body for adding an activity preference.
type ActivityRequest struct {
	ActivityID int `json:"activity_ID"`
}

// UpdatePreferencesRequest replaces one activity preference with another.
type UpdatePreferencesRequest struct {
	NewActivityID *int `json:"new_activity_ID"`
	OldActivityID *int `json:"old_activity_ID"`
}

// SuccessResponse is the standard success body.
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Validate checks the shape constraints for profile creation.
func (r CreateUserRequest) Validate() error {
	if len(r.Username) < 3 || len(r.Username) > 50 {
		return fmt.Errorf("username must be between 3 and 50 characters")
	}
	return validateOptionalFields(r.Email, r.PhoneNumber, r.Location, r.DateOfBirth)
}

// Validate checks the shape constraints for profile updates.
func (r UpdateUserRequest) Validate() error {
	if r.Username != nil && (len(*r.Username) < 3 || len(*r.Username) > 50) {
		return fmt.Errorf("username must be between 3 and 50 characters")
	}
	return validateOptionalFields(r.Email, r.PhoneNumber, r.Location, r.DateOfBirth)
}

func validateOptionalFields(email, phone, location, dob *string) error {
	if email != nil {
		if _, err := mail.ParseAddress(*email); err != nil {
			return fmt.Errorf("invalid email address")
		}
	}
	if phone != nil && len(*phone) > 20 {
		return fmt.Errorf("phone_number must be at most 20 characters")
	}
	if location != nil && len(*location) > 100 {
		return fmt.Errorf("location must be at most 100 characters")
	}
	if dob != nil {
		if _, err := time.Parse(DateLayout, *dob); err != nil {
			return fmt.Errorf("date_of_birth must be in YYYY-MM-DD format")
		}
	}
	return nil
}
