package service

import (
	"net/http"
	"strings"
)

// Kind identifies a domain error category derived from backend error text.
type Kind string

const (
	KindUserNotFound        Kind = "user_not_found"
	KindNewActivityNotFound Kind = "new_activity_not_found"
	KindOldActivityConflict Kind = "old_activity_conflict"
	KindOldActivityNotFound Kind = "old_activity_not_found"
	KindActivityNotFound    Kind = "activity_not_found"
	KindActivityConflict    Kind = "activity_conflict"
	KindEmailConflict       Kind = "email_conflict"
	KindUsernameConflict    Kind = "username_conflict"
	KindInvalidDateOfBirth  Kind = "invalid_date_of_birth"
	KindInvalidPhoneNumber  Kind = "invalid_phone_number"
	KindInternalError       Kind = "internal_error"
)

// DomainError pairs a kind with its fixed HTTP status and user-facing
// detail. The raw backend text never reaches the caller.
type DomainError struct {
	Kind   Kind
	Status int
	Detail string
}

func (e *DomainError) Error() string { return e.Detail }

var domainErrors = map[Kind]*DomainError{
	KindUserNotFound:        {KindUserNotFound, http.StatusNotFound, "User not found"},
	KindNewActivityNotFound: {KindNewActivityNotFound, http.StatusNotFound, "New Activity not found"},
	KindOldActivityConflict: {KindOldActivityConflict, http.StatusConflict, "Old activity not found for this user."},
	KindOldActivityNotFound: {KindOldActivityNotFound, http.StatusNotFound, "Old Activity not found for this user"},
	KindActivityNotFound:    {KindActivityNotFound, http.StatusNotFound, "Activity not found"},
	KindActivityConflict:    {KindActivityConflict, http.StatusConflict, "Activity already exists for this user."},
	KindEmailConflict:       {KindEmailConflict, http.StatusConflict, "Email already exists."},
	KindUsernameConflict:    {KindUsernameConflict, http.StatusConflict, "Username already exists"},
	KindInvalidDateOfBirth:  {KindInvalidDateOfBirth, http.StatusConflict, "Invalid date of birth, must be at least 13 years old."},
	KindInvalidPhoneNumber:  {KindInvalidPhoneNumber, http.StatusConflict, "Invalid phone number format, the number must start with +."},
	KindInternalError:       {KindInternalError, http.StatusInternalServerError, "Internal server error"},
}

// classifyRules is checked in order, first match wins. Longer substrings
// must come before the shorter ones they contain: "old activity not found
// for this user" would otherwise be swallowed by "old activity not found",
// and both by "activity not found".
var classifyRules = []struct {
	substr string
	kind   Kind
}{
	{"user not found", KindUserNotFound},
	{"new activity not found", KindNewActivityNotFound},
	{"old activity not found for this user", KindOldActivityConflict},
	{"old activity not found", KindOldActivityNotFound},
	{"activity not found", KindActivityNotFound},
	{"activity already exists for this user", KindActivityConflict},
	{"email already exists", KindEmailConflict},
	{"username already exists", KindUsernameConflict},
	{"date_of_birth", KindInvalidDateOfBirth},
	{"phone_number", KindInvalidPhoneNumber},
}

// Classify maps raw backend error text to a domain error. Matching is
// case-insensitive; anything unrecognized is an internal error.
func Classify(raw string) *DomainError {
	msg := strings.ToLower(raw)
	for _, rule := range classifyRules {
		if strings.Contains(msg, rule.substr) {
			return domainErrors[rule.kind]
		}
	}
	return domainErrors[KindInternalError]
}

func errorFor(kind Kind) *DomainError {
	return domainErrors[kind]
}
