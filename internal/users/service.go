package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/arcana/backend/internal/auth"
	"github.com/MarcoPoloResearchLab/arcana/backend/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxUsernameSuffix = 100

// ErrInvalidIdentity indicates the claims or profile did not contain a usable identifier.
var ErrInvalidIdentity = errors.New("users: invalid identity")

// ServiceConfig describes the dependencies required for user persistence.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service reads and writes User records. Users are never deleted.
type Service struct {
	db     *gorm.DB
	now    func() time.Time
	logger *zap.Logger
}

// NewService constructs the user gateway.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("users: database connection required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:     cfg.Database,
		now:    clock,
		logger: logger,
	}, nil
}

// Get returns found == false when no user has the id.
func (s *Service) Get(ctx context.Context, id string) (User, bool, error) {
	userID := normalize(id)
	if userID == "" {
		return User{}, false, nil
	}
	var user User
	err := s.db.WithContext(ctx).Where("id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("users: get %s: %w", userID, err)
	}
	return user, true, nil
}

// Upsert inserts the user or merges the non-empty profile fields into the existing row.
// updated_at is refreshed either way.
func (s *Service) Upsert(ctx context.Context, profile Profile) (User, error) {
	userID := normalize(profile.ID)
	if userID == "" {
		return User{}, ErrInvalidIdentity
	}
	now := s.now().UTC().Truncate(time.Microsecond)
	record := User{
		ID:          userID,
		Username:    normalize(profile.Username),
		Email:       normalize(profile.Email),
		DisplayName: normalize(profile.DisplayName),
		AvatarURL:   normalize(profile.AvatarURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	assignments := []string{"updated_at"}
	if record.Username != "" {
		assignments = append(assignments, "username")
	} else {
		record.Username = userID
	}
	if record.Email != "" {
		assignments = append(assignments, "email")
	}
	if record.DisplayName != "" {
		assignments = append(assignments, "display_name")
	}
	if record.AvatarURL != "" {
		assignments = append(assignments, "avatar_url")
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(assignments),
		}).
		Create(&record).Error
	if err != nil {
		s.logger.Error("user upsert failed", zap.String("user_id", userID), zap.Error(err))
		return User{}, fmt.Errorf("users: upsert %s: %w", userID, err)
	}

	stored, found, err := s.Get(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, fmt.Errorf("users: upsert %s: row missing after write", userID)
	}
	return stored, nil
}

// Update applies a partial profile change. It reports found == false for unknown ids.
func (s *Service) Update(ctx context.Context, id string, update ProfileUpdate) (User, bool, error) {
	userID := normalize(id)
	if userID == "" {
		return User{}, false, nil
	}
	if err := update.Validate(); err != nil {
		return User{}, false, err
	}

	if update.Username != nil {
		taken, err := s.usernameTaken(ctx, userID, normalize(*update.Username))
		if err != nil {
			return User{}, false, err
		}
		if taken {
			rules := validation.Rules{}
			rules.Fail("username", "is already taken")
			return User{}, false, rules.Err()
		}
	}

	columns := update.columns()
	columns["updated_at"] = s.now().UTC().Truncate(time.Microsecond)
	result := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Updates(columns)
	if result.Error != nil {
		s.logger.Error("user update failed", zap.String("user_id", userID), zap.Error(result.Error))
		return User{}, false, fmt.Errorf("users: update %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return User{}, false, nil
	}
	return s.Get(ctx, userID)
}

// ResolveUser maps validated session claims to the stored user, creating the account on first
// sight and merging profile claims that changed since.
func (s *Service) ResolveUser(ctx context.Context, claims auth.SessionClaims) (User, error) {
	userID := canonicalUserID(claims)
	if userID == "" {
		return User{}, ErrInvalidIdentity
	}

	existing, found, err := s.Get(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if !found {
		username, err := s.availableUsername(ctx, userID, normalize(claims.UserEmail), userID)
		if err != nil {
			return User{}, err
		}
		return s.Upsert(ctx, Profile{
			ID:          userID,
			Username:    username,
			Email:       claims.UserEmail,
			DisplayName: claims.UserDisplayName,
			AvatarURL:   claims.UserAvatarURL,
		})
	}

	if !profileChanged(existing, claims) {
		return existing, nil
	}
	return s.Upsert(ctx, Profile{
		ID:          userID,
		Email:       claims.UserEmail,
		DisplayName: claims.UserDisplayName,
		AvatarURL:   claims.UserAvatarURL,
	})
}

// usernameTaken is checked before writing so the caller gets a field error; the unique index
// still guards against a concurrent rename.
func (s *Service) usernameTaken(ctx context.Context, userID, username string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&User{}).
		Where("username = ? AND id <> ?", username, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("users: check username: %w", err)
	}
	return count > 0, nil
}

// availableUsername picks the first candidate no other user holds, then falls back to the user id
// with a numeric suffix.
func (s *Service) availableUsername(ctx context.Context, userID string, candidates ...string) (string, error) {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		taken, err := s.usernameTaken(ctx, userID, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	for suffix := 2; suffix <= maxUsernameSuffix; suffix++ {
		candidate := fmt.Sprintf("%s-%d", userID, suffix)
		taken, err := s.usernameTaken(ctx, userID, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("users: no free username for %s", userID)
}

func profileChanged(existing User, claims auth.SessionClaims) bool {
	if email := normalize(claims.UserEmail); email != "" && email != existing.Email {
		return true
	}
	if display := normalize(claims.UserDisplayName); display != "" && display != existing.DisplayName {
		return true
	}
	if avatar := normalize(claims.UserAvatarURL); avatar != "" && avatar != existing.AvatarURL {
		return true
	}
	return false
}

// canonicalUserID strips a "provider:" prefix from the claimed user id so the same account
// keeps one identifier regardless of which login provider TAuth reports.
func canonicalUserID(claims auth.SessionClaims) string {
	subject := normalize(claims.Subject)

	raw := normalize(claims.UserID)
	if raw != "" {
		if strings.Contains(raw, ":") {
			segments := strings.SplitN(raw, ":", 2)
			if normalize(segments[0]) != "" && normalize(segments[1]) != "" {
				subject = normalize(segments[1])
			}
		} else {
			subject = raw
		}
	}

	if subject == "" {
		subject = normalize(claims.UserEmail)
	}
	return subject
}
