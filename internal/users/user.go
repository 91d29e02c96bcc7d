package users

import (
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/arcana/backend/internal/validation"
)

// User is the account record every content row is scoped to.
type User struct {
	ID          string    `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	Username    string    `gorm:"column:username;size:190;not null;uniqueIndex" json:"username"`
	Email       string    `gorm:"column:email;size:320" json:"email"`
	DisplayName string    `gorm:"column:display_name;size:320" json:"displayName"`
	AvatarURL   string    `gorm:"column:avatar_url;size:512" json:"avatarUrl"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null" json:"updatedAt"`
}

// TableName exposes the table backing user accounts.
func (User) TableName() string {
	return "users"
}

// Profile carries the fields merged by Upsert. Empty values leave stored fields untouched.
type Profile struct {
	ID          string
	Username    string
	Email       string
	DisplayName string
	AvatarURL   string
}

// ProfileUpdate is a partial update; nil fields are left alone.
type ProfileUpdate struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

// Validate checks the fields that were supplied.
func (u ProfileUpdate) Validate() error {
	rules := validation.Rules{}
	if u.Username != nil {
		username := normalize(*u.Username)
		rules.RequiredText("username", username)
		rules.Check("username", username, "max=100", "must be at most 100 characters")
	}
	if u.Email != nil && normalize(*u.Email) != "" {
		rules.Check("email", normalize(*u.Email), "email", "must be a valid email address")
	}
	if u.AvatarURL != nil && normalize(*u.AvatarURL) != "" {
		rules.Check("avatarUrl", normalize(*u.AvatarURL), "url", "must be a valid URL")
	}
	return rules.Err()
}

func (u ProfileUpdate) columns() map[string]any {
	updates := map[string]any{}
	if u.Username != nil {
		updates["username"] = normalize(*u.Username)
	}
	if u.Email != nil {
		updates["email"] = normalize(*u.Email)
	}
	if u.DisplayName != nil {
		updates["display_name"] = normalize(*u.DisplayName)
	}
	if u.AvatarURL != nil {
		updates["avatar_url"] = normalize(*u.AvatarURL)
	}
	return updates
}

func normalize(value string) string {
	return strings.TrimSpace(value)
}
