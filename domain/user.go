package domain

// Gender values accepted at registration.
const (
	GenderPrince   = "prince"
	GenderPrincess = "princess"
)

// User is a registered account. Username is the immutable login handle,
// DisplayName the mutable user-facing name; both are unique
// case-insensitively across the store.
type User struct {
	ID            string   `json:"id"`
	Username      string   `json:"username"`
	DisplayName   string   `json:"displayName"`
	PasswordHash  string   `json:"password"`
	IsOwner       bool     `json:"isOwner"`
	Avatar        string   `json:"avatar"`
	Gender        string   `json:"gender"`
	SpecialBadges []string `json:"specialBadges"`
	CanSendImages bool     `json:"canSendImages"`
	CanSendVideos bool     `json:"canSendVideos"`
	JoinDate      string   `json:"joinDate"`
}

// AvatarForGender returns the default avatar assigned at registration.
func AvatarForGender(gender string) string {
	if gender == GenderPrince {
		return "🤴"
	}
	return "👸"
}

// UserSummary is the shape pushed in users-list events.
type UserSummary struct {
	ID            string   `json:"id"`
	Username      string   `json:"username,omitempty"`
	DisplayName   string   `json:"displayName"`
	Avatar        string   `json:"avatar"`
	IsOnline      bool     `json:"isOnline"`
	IsOwner       bool     `json:"isOwner"`
	IsModerator   bool     `json:"isModerator"`
	SpecialBadges []string `json:"specialBadges"`
}
