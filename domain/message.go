package domain

// Message kinds.
const (
	MessageText  = "text"
	MessageImage = "image"
	MessageVideo = "video"
)

// MaxMessageLen caps message text; longer input is truncated, not rejected.
const MaxMessageLen = 1000

// Message is one room message. DisplayName/Avatar/IsOwner/IsModerator are
// denormalized snapshots taken at send time. ID, UserID and Timestamp never
// change; only Text and Edited may be rewritten, and only by the author.
type Message struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	DisplayName string `json:"username"`
	Avatar      string `json:"avatar"`
	Kind        string `json:"kind"`
	Text        string `json:"text,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`
	Timestamp   int64  `json:"timestamp"`
	IsOwner     bool   `json:"isOwner"`
	IsModerator bool   `json:"isModerator"`
	RoomID      string `json:"roomId"`
	Edited      bool   `json:"edited"`
}

// PrivateMessage lives in a thread between two users, independent of any
// room.
type PrivateMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	FromName  string `json:"fromName"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// PrivateThreadCap bounds what a thread fetch returns.
const PrivateThreadCap = 200

// SupportMessage is a one-way note to the owner inbox. Banned and
// unauthenticated senders may still file these.
type SupportMessage struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	Text   string `json:"message"`
	SentAt int64  `json:"sentAt"`
	FromIP string `json:"fromIP"`
}

// Truncate clips s to at most MaxMessageLen runes.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) > MaxMessageLen {
		return string(r[:MaxMessageLen])
	}
	return s
}
