package objects

import (
	"fmt"
	"time"
)

type MenuId int

const (
	Menu_Idle MenuId = 100 // Regular users have no multi-step flows

	// Admin compose flow states
	Menu_CollectingTitle    MenuId = 500
	Menu_CollectingBody     MenuId = 510
	Menu_CollectingMedia    MenuId = 520
	Menu_CollectingAudience MenuId = 530
	Menu_Confirming         MenuId = 540
)

type User struct {
	UserId         int64
	MenuId         MenuId
	Username       string
	FirstName      string
	LastName       string
	JoinedAt       time.Time
	LastActivityAt time.Time
}

// NewUser creates a user record in the idle state
func NewUser(userId int64, username, firstName, lastName string) *User {
	now := time.Now().UTC()
	return &User{
		UserId:         userId,
		MenuId:         Menu_Idle,
		Username:       username,
		FirstName:      firstName,
		LastName:       lastName,
		JoinedAt:       now,
		LastActivityAt: now,
	}
}

// DisplayName returns a human-readable identifier for admin screens and reports
func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" {
		if u.LastName != "" {
			return u.FirstName + " " + u.LastName
		}
		return u.FirstName
	}
	return fmt.Sprintf("id%d", u.UserId)
}

// HasHandle reports whether the user has a public @username
func (u *User) HasHandle() bool {
	return u.Username != ""
}
