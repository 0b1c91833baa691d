package service

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"trail-profile-service/internal/models"
	"trail-profile-service/internal/repository"
)

func newTestService(t *testing.T) (*ProfileService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	svc := NewProfileService(repository.NewProfileRepository(db), nil)
	return svc, mock, func() { _ = db.Close() }
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func backendErr(msg string) *pq.Error {
	return &pq.Error{Severity: "ERROR", Code: "P0001", Message: msg}
}

func wantDomainKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DomainError, got %v", err)
	}
	if de.Kind != kind {
		t.Fatalf("kind = %v, want %v", de.Kind, kind)
	}
}

func checkExpectations(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreateUserExactThirteenYearsAccepted(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	dob := time.Now().AddDate(-13, 0, 0).Format(models.DateLayout)
	mock.ExpectExec(regexp.QuoteMeta(`SELECT trail.create_user($1, $2, $3, $4, $5)`)).
		WithArgs("ada", "ada@x.com", nil, nil, dob).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.CreateUser(models.CreateUserRequest{
		Username:    "ada",
		Email:       strPtr("ada@x.com"),
		DateOfBirth: &dob,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	checkExpectations(t, mock)
}

func TestCreateUserOneDayUnderThirteenRejected(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	// 12 years and 364 days old at submission
	dob := time.Now().AddDate(-13, 0, 1).Format(models.DateLayout)
	err := svc.CreateUser(models.CreateUserRequest{
		Username:    "ada",
		DateOfBirth: &dob,
	})
	wantDomainKind(t, err, KindInvalidDateOfBirth)
	// The gateway must not have been touched.
	checkExpectations(t, mock)
}

func TestCreateUserPhoneWithoutPlusRejected(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	err := svc.CreateUser(models.CreateUserRequest{
		Username:    "ada",
		PhoneNumber: strPtr("0123456789"),
	})
	wantDomainKind(t, err, KindInvalidPhoneNumber)
	checkExpectations(t, mock)
}

func TestCreateUserShortUsernameRejected(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	err := svc.CreateUser(models.CreateUserRequest{Username: "ab"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestCreateUserClassifiesEmailConflict(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`SELECT trail.create_user($1, $2, $3, $4, $5)`)).
		WithArgs("ada", "ada@x.com", nil, nil, nil).
		WillReturnError(backendErr("Email already exists"))

	err := svc.CreateUser(models.CreateUserRequest{
		Username: "ada",
		Email:    strPtr("ada@x.com"),
	})
	wantDomainKind(t, err, KindEmailConflict)
	checkExpectations(t, mock)
}

func TestCreateUserStoreUnavailable(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`SELECT trail.create_user($1, $2, $3, $4, $5)`)).
		WillReturnError(errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"))

	err := svc.CreateUser(models.CreateUserRequest{Username: "ada"})
	if !errors.Is(err, repository.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	checkExpectations(t, mock)
}

func TestDeleteUserIsIdempotent(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`SELECT trail.delete_user($1)`)).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT trail.delete_user($1)`)).
		WithArgs(42).
		WillReturnError(backendErr("User not found"))

	if err := svc.DeleteUser(42); err != nil {
		t.Fatalf("first DeleteUser: %v", err)
	}
	// Repeating the delete reports a missing user, not a crash.
	wantDomainKind(t, svc.DeleteUser(42), KindUserNotFound)
	checkExpectations(t, mock)
}

// Read and delete only distinguish a missing user; any other backend text
// is reported as an internal error even when the full table would match it.
func TestDeleteUserNarrowClassification(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`SELECT trail.delete_user($1)`)).
		WithArgs(42).
		WillReturnError(backendErr("Email already exists"))

	wantDomainKind(t, svc.DeleteUser(42), KindInternalError)
	checkExpectations(t, mock)
}

func TestReadUserNarrowClassification(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM trail.read_user($1)`)).
		WithArgs(999).
		WillReturnError(backendErr("User not found"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM trail.read_user($1)`)).
		WithArgs(7).
		WillReturnError(backendErr("Activity not found"))

	_, err := svc.ReadUser(999)
	wantDomainKind(t, err, KindUserNotFound)

	_, err = svc.ReadUser(7)
	wantDomainKind(t, err, KindInternalError)
	checkExpectations(t, mock)
}

func TestUpdatePreferenceOldActivityConflict(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`SELECT trail.update_user_activity($1, $2, $3)`)).
		WithArgs(7, 2, 3).
		WillReturnError(backendErr("Old activity not found for this user"))

	err := svc.UpdatePreference(7, models.UpdatePreferencesRequest{
		NewActivityID: intPtr(2),
		OldActivityID: intPtr(3),
	})
	wantDomainKind(t, err, KindOldActivityConflict)
	checkExpectations(t, mock)
}

func TestAddActivityConflict(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`SELECT trail.add_user_activity($1, $2)`)).
		WithArgs(7, 1).
		WillReturnError(backendErr("Activity already exists for this user"))

	err := svc.AddActivity(7, models.ActivityRequest{ActivityID: 1})
	wantDomainKind(t, err, KindActivityConflict)
	checkExpectations(t, mock)
}

func TestUpdateUserInvalidEmailRejected(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	err := svc.UpdateUser(7, models.UpdateUserRequest{Email: strPtr("not-an-email")})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	checkExpectations(t, mock)
}

func TestReadUserReturnsRow(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"user_id", "username", "email"}).
		AddRow(7, "ada", "ada@x.com")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM trail.read_user($1)`)).
		WithArgs(7).
		WillReturnRows(rows)

	row, err := svc.ReadUser(7)
	if err != nil {
		t.Fatalf("ReadUser: %v", err)
	}
	if row["username"] != "ada" {
		t.Fatalf("username = %v, want ada", row["username"])
	}
	if row["email"] != "ada@x.com" {
		t.Fatalf("email = %v, want ada@x.com", row["email"])
	}
	checkExpectations(t, mock)
}
