// Package model defines domain entities used by services, repositories and the client core.
package model

import (
	"regexp"
	"strings"
	"time"
)

// AuthStep is the client's current position in the authentication flow.
type AuthStep int

const (
	// StepPhone awaits a phone number.
	StepPhone AuthStep = iota
	// StepCode awaits the 6-digit verification code.
	StepCode
	// StepProfile awaits nickname/username setup for a fresh phone number.
	StepProfile
	// StepAuthorized holds an authorized identity.
	StepAuthorized
)

func (s AuthStep) String() string {
	switch s {
	case StepPhone:
		return "phone"
	case StepCode:
		return "code"
	case StepProfile:
		return "profile"
	case StepAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Identity is the permanent account record created once per phone number.
// Nickname and username are immutable after creation.
type Identity struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Username string `json:"username"`
}

// Friend references another identity from the caller's point of view.
type Friend struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Username string `json:"username"`
	Status   string `json:"status,omitempty"` // "pending" or "accepted"
}

// Friendship statuses as stored by the service.
const (
	FriendPending  = "pending"
	FriendAccepted = "accepted"
)

// User is an account row stored on the server, keyed by phone.
type User struct {
	ID        int64
	Phone     string
	Nickname  string
	Username  string
	CreatedAt time.Time
}

// Identity returns the public projection of the user row.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Nickname: u.Nickname, Username: u.Username}
}

// Chat is a conversation record. Message contents are outside this module;
// only the chat itself and its membership are modeled.
type Chat struct {
	ID          int64
	Type        string // "private" or "group"
	Name        string
	UpdatedAt   time.Time
	MemberCount int
}

var usernameRe = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)

// ValidUsername reports whether s is exactly [a-z0-9_]{3,20}.
func ValidUsername(s string) bool { return usernameRe.MatchString(s) }

// ValidNickname reports whether s is non-empty after trimming and at most
// 100 characters. Any characters are allowed.
func ValidNickname(s string) bool {
	t := strings.TrimSpace(s)
	return t != "" && len([]rune(s)) <= 100
}
