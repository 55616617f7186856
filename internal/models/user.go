package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents an account profile (PostgreSQL). Counters are
// denormalized and maintained by the relationship and engagement handlers.
// Users are never hard-deleted; deactivation clears IsActive.
type User struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Handle      string `json:"handle" gorm:"uniqueIndex;size:30"`
	DisplayName string `json:"display_name" gorm:"size:80"`
	Email       string `json:"email" gorm:"uniqueIndex"`
	Password    string `json:"-"` // bcrypt hash, empty for Firebase-only accounts
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"index"`

	Bio       string `json:"bio" gorm:"size:300"`
	AvatarURL string `json:"avatar_url"`
	CoverURL  string `json:"cover_url"`

	FollowersCount int `json:"followers_count" gorm:"default:0"`
	FollowingCount int `json:"following_count" gorm:"default:0"`
	PostsCount     int `json:"posts_count" gorm:"default:0"`
	LikesCount     int `json:"likes_count" gorm:"default:0"`

	IsPrivate   bool `json:"is_private" gorm:"default:false"`
	IsSuspended bool `json:"is_suspended" gorm:"default:false"`
	IsActive    bool `json:"is_active" gorm:"default:true"`
	IsAdmin     bool `json:"is_admin" gorm:"default:false"`
	IsModerator bool `json:"is_moderator" gorm:"default:false"`
	IsVerified  bool `json:"is_verified" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserCompact is the author projection embedded in feed and notification
// responses.
type UserCompact struct {
	ID          uint   `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	IsVerified  bool   `json:"is_verified"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:          u.ID,
		Handle:      u.Handle,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		IsVerified:  u.IsVerified,
	}
}

// Relationship describes how the viewer relates to a profile.
type Relationship struct {
	IsFollowing  bool `json:"isFollowing"`
	IsFollowedBy bool `json:"isFollowedBy"`
	IsBlocking   bool `json:"isBlocking"`
	IsMuted      bool `json:"isMuted"`
	IsSelf       bool `json:"isSelf"`
}

// SignupRequest defines the request body for local registration
type SignupRequest struct {
	Handle      string `json:"handle" validate:"required,min=2,max=30,alphanum"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=80"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
}

// SignInRequest defines the request body for local authentication
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest defines the request body for profile edits
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,min=1,max=80"`
	Bio         string `json:"bio,omitempty" validate:"omitempty,max=300"`
	AvatarURL   string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	CoverURL    string `json:"cover_url,omitempty" validate:"omitempty,url"`
	IsPrivate   *bool  `json:"is_private,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
