package domain

import (
	"time"

	"gorm.io/datatypes"
)

// User is keyed by the Google account subject so OAuth logins map 1:1 to rows.
type User struct {
	ID        string  `gorm:"type:text;primaryKey" json:"id"`
	Email     *string `gorm:"column:email;type:text" json:"email"`
	Name      *string `gorm:"column:name;type:text" json:"name"`
	AvatarURL *string `gorm:"column:avatar_url;type:text" json:"avatarUrl"`

	// Settings holds UserSettings as JSON.
	Settings datatypes.JSON `gorm:"column:settings" json:"settings,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type UserSettings struct {
	SpreadsheetID string `json:"spreadsheetId,omitempty"`
}

// AuthUser is the identity resolved for a request, either from the cached Google profile or
// from the e2e test user stored in the session.
type AuthUser struct {
	ID      string  `json:"id" mapstructure:"id"`
	Email   *string `json:"email" mapstructure:"email"`
	Name    *string `json:"name" mapstructure:"name"`
	Picture *string `json:"picture" mapstructure:"picture"`
}
