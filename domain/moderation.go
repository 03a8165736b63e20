package domain

import "time"

// MuteRecord restricts a user from sending. Permanent mutes carry no
// expiry and are lifted only by the owner; temporary mutes expire on their
// own and are lazily purged once past ExpiresAt.
type MuteRecord struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"username"`
	Reason      string `json:"reason"`
	MutedBy     string `json:"mutedBy"`
	MutedByID   string `json:"mutedById"`
	ByOwner     bool   `json:"byOwner"`
	RoomID      string `json:"roomId,omitempty"`
	Permanent   bool   `json:"permanent"`
	ExpiresAt   int64  `json:"expiresAt,omitempty"` // unix ms, 0 when permanent
}

// Expired reports whether a temporary mute has lapsed at the given time.
func (m *MuteRecord) Expired(now time.Time) bool {
	return !m.Permanent && now.UnixMilli() >= m.ExpiresAt
}

// BanRecord blocks authentication entirely until explicitly removed. IP is
// the last network origin seen for the banned user, empty when the user was
// offline at ban time.
type BanRecord struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"username"`
	Reason      string `json:"reason"`
	BannedBy    string `json:"bannedBy"`
	BannedAt    int64  `json:"bannedAt"` // unix ms
	IP          string `json:"ip,omitempty"`
}
