package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"trail-profile-service/internal/models"
)

// ErrStoreUnavailable means the backend could not be reached at all. The
// error text of a failed connection is not classifiable, so it is kept
// separate from BackendError.
var ErrStoreUnavailable = errors.New("database connection failed")

// BackendError is a failure raised by a stored procedure. Raw carries the
// procedure's error text for classification.
type BackendError struct {
	Raw string
}

func (e *BackendError) Error() string { return e.Raw }

// ProfileRepository invokes the trail stored procedures. Each method issues
// exactly one statement; the database/sql pool scopes connection acquisition
// and release around it.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// CreateUser creates a new profile.
func (r *ProfileRepository) CreateUser(req models.CreateUserRequest) error {
	_, err := r.db.Exec(`SELECT trail.create_user($1, $2, $3, $4, $5)`,
		req.Username, req.Email, req.PhoneNumber, req.Location, req.DateOfBirth)
	return translate(err)
}

// ReadUser returns the profile row as a column-name-to-value map. The row
// shape is whatever the procedure returns; it is not fixed here.
func (r *ProfileRepository) ReadUser(userID int) (map[string]any, error) {
	rows, err := r.db.Query(`SELECT * FROM trail.read_user($1)`, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, translate(err)
		}
		return nil, &BackendError{Raw: "User not found"}
	}

	columns, err := rows.Columns()
	if err != nil {
		return nil, translate(err)
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, translate(err)
	}

	row := make(map[string]any, len(columns))
	for i, col := range columns {
		if b, ok := values[i].([]byte); ok {
			row[col] = string(b)
		} else {
			row[col] = values[i]
		}
	}
	return row, nil
}

// UpdateUser updates a profile; nil fields are left unchanged.
func (r *ProfileRepository) UpdateUser(userID int, req models.UpdateUserRequest) error {
	_, err := r.db.Exec(`SELECT trail.update_user($1, $2, $3, $4, $5, $6)`,
		userID, req.Username, req.Email, req.PhoneNumber, req.Location, req.DateOfBirth)
	return translate(err)
}

// DeleteUser removes a profile.
func (r *ProfileRepository) DeleteUser(userID int) error {
	_, err := r.db.Exec(`SELECT trail.delete_user($1)`, userID)
	return translate(err)
}

// AddActivity adds an activity preference for a user.
func (r *ProfileRepository) AddActivity(userID, activityID int) error {
	_, err := r.db.Exec(`SELECT trail.add_user_activity($1, $2)`, userID, activityID)
	return translate(err)
}

// UpdatePreference replaces oldActivityID with newActivityID for a user.
func (r *ProfileRepository) UpdatePreference(userID int, newActivityID, oldActivityID *int) error {
	_, err := r.db.Exec(`SELECT trail.update_user_activity($1, $2, $3)`,
		userID, newActivityID, oldActivityID)
	return translate(err)
}

// translate separates procedure-raised failures, whose text is meaningful,
// from transport failures, whose text is not.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &BackendError{Raw: pqErr.Message}
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
