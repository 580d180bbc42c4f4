package domain

import (
	"errors"
	"time"
)

// Visibility controls who may start conversations with a profile.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

var ErrProfileNotFound = errors.New("profile not found")
var ErrProfileNotAccessible = errors.New("profile not publicly available")

// Profile is an AI character definition. Immutable from the handshake's
// perspective.
type Profile struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Visibility  Visibility `json:"visibility"`
	CreatorID   string     `json:"creator_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AccessibleBy reports whether userID may start a conversation with the
// profile: public profiles admit everyone, private profiles admit only their
// creator. The admin role is deliberately not consulted here.
func (p *Profile) AccessibleBy(userID string) bool {
	if p.Visibility != VisibilityPrivate {
		return true
	}
	return p.CreatorID == userID
}
