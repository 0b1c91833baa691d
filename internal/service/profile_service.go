package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"trail-profile-service/internal/models"
	"trail-profile-service/internal/repository"
)

const profileCacheTTL = 10 * time.Minute

// ValidationError is a request-shape failure rejected before any backend
// call is made.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

type ProfileService struct {
	repo  *repository.ProfileRepository
	redis *redis.Client
}

func NewProfileService(repo *repository.ProfileRepository, rdb *redis.Client) *ProfileService {
	return &ProfileService{repo: repo, redis: rdb}
}

// CreateUser creates a profile.
func (s *ProfileService) CreateUser(req models.CreateUserRequest) error {
	if err := req.Validate(); err != nil {
		return &ValidationError{Detail: err.Error()}
	}
	if err := checkPhoneAndAge(req.PhoneNumber, req.DateOfBirth); err != nil {
		return err
	}
	return s.classifyFull(s.repo.CreateUser(req))
}

// ReadUser returns the profile row for a user. Failures other than a
// missing user are reported as internal errors, mirroring what the read
// procedure can actually raise.
func (s *ProfileService) ReadUser(userID int) (map[string]any, error) {
	cacheKey := fmt.Sprintf("profile:%d", userID)
	if cached, err := s.getFromCache(cacheKey); err == nil {
		var row map[string]any
		if json.Unmarshal([]byte(cached), &row) == nil {
			return row, nil
		}
	}

	row, err := s.repo.ReadUser(userID)
	if err != nil {
		return nil, s.classifyNarrow(err)
	}

	if data, err := json.Marshal(row); err == nil {
		s.setCache(cacheKey, string(data), profileCacheTTL)
	}

	return row, nil
}

// UpdateUser updates a profile; nil fields are left unchanged.
func (s *ProfileService) UpdateUser(userID int, req models.UpdateUserRequest) error {
	if err := req.Validate(); err != nil {
		return &ValidationError{Detail: err.Error()}
	}
	if err := checkPhoneAndAge(req.PhoneNumber, req.DateOfBirth); err != nil {
		return err
	}
	if err := s.classifyFull(s.repo.UpdateUser(userID, req)); err != nil {
		return err
	}
	s.delCache(fmt.Sprintf("profile:%d", userID))
	return nil
}

// DeleteUser removes a profile. Like ReadUser it only distinguishes a
// missing user from an internal failure.
func (s *ProfileService) DeleteUser(userID int) error {
	if err := s.classifyNarrow(s.repo.DeleteUser(userID)); err != nil {
		return err
	}
	s.delCache(fmt.Sprintf("profile:%d", userID))
	return nil
}

// AddActivity adds an activity preference for a user.
func (s *ProfileService) AddActivity(userID int, req models.ActivityRequest) error {
	return s.classifyFull(s.repo.AddActivity(userID, req.ActivityID))
}

// UpdatePreference replaces one activity preference with another.
func (s *ProfileService) UpdatePreference(userID int, req models.UpdatePreferencesRequest) error {
	return s.classifyFull(s.repo.UpdatePreference(userID, req.NewActivityID, req.OldActivityID))
}

// classifyFull translates a backend failure through the whole
// classification table.
func (s *ProfileService) classifyFull(err error) error {
	if err == nil {
		return nil
	}
	var be *repository.BackendError
	if errors.As(err, &be) {
		return Classify(be.Raw)
	}
	return err
}

// classifyNarrow only recognizes a missing user; every other backend
// failure is an internal error.
func (s *ProfileService) classifyNarrow(err error) error {
	if err == nil {
		return nil
	}
	var be *repository.BackendError
	if errors.As(err, &be) {
		if d := Classify(be.Raw); d.Kind == KindUserNotFound {
			return d
		}
		return errorFor(KindInternalError)
	}
	return err
}

// checkPhoneAndAge enforces the phone prefix and minimum-age rules before
// the gateway is invoked. Both surface the same domain errors the backend
// raises for them.
func checkPhoneAndAge(phone, dob *string) error {
	if phone != nil && !strings.HasPrefix(*phone, "+") {
		return errorFor(KindInvalidPhoneNumber)
	}
	if dob != nil {
		born, err := time.Parse(models.DateLayout, *dob)
		if err != nil {
			return &ValidationError{Detail: "date_of_birth must be in YYYY-MM-DD format"}
		}
		// Thirteenth birthday today is still old enough.
		if born.AddDate(13, 0, 0).After(time.Now()) {
			return errorFor(KindInvalidDateOfBirth)
		}
	}
	return nil
}

// Redis helpers

func (s *ProfileService) getFromCache(key string) (string, error) {
	if s.redis == nil {
		return "", fmt.Errorf("redis not available")
	}
	return s.redis.Get(context.Background(), key).Result()
}

func (s *ProfileService) setCache(key, value string, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(context.Background(), key, value, ttl).Err(); err != nil {
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}

func (s *ProfileService) delCache(key string) {
	if s.redis == nil {
		return
	}
	s.redis.Del(context.Background(), key)
}
