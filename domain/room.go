package domain

// RoomHistoryCap bounds each room's message list; oldest messages are
// evicted first.
const RoomHistoryCap = 200

// RoomSnapshotSize is how many trailing messages a joining client receives.
const RoomSnapshotSize = 50

// GlobalRoomID is the official bootstrap room, created once and never
// deletable.
const GlobalRoomID = "global_cold"

// Room holds membership, moderation flags and the bounded message history.
// Users and Moderators hold user ids.
type Room struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CreatedBy    string    `json:"createdBy"`
	CreatorID    string    `json:"creatorId"`
	Users        []string  `json:"users"`
	Messages     []Message `json:"messages"`
	IsOfficial   bool      `json:"isOfficial"`
	Moderators   []string  `json:"moderators"`
	IsSilenced   bool      `json:"isSilenced"`
	HasPassword  bool      `json:"hasPassword"`
	PasswordHash string    `json:"password,omitempty"`
	CreatedAt    string    `json:"createdAt"`
}

// HasUser reports whether the user id is in the membership set.
func (r *Room) HasUser(userID string) bool {
	for _, id := range r.Users {
		if id == userID {
			return true
		}
	}
	return false
}

// AddUser adds the user id to the membership set if absent.
func (r *Room) AddUser(userID string) {
	if !r.HasUser(userID) {
		r.Users = append(r.Users, userID)
	}
}

// RemoveUser removes the user id from the membership set.
func (r *Room) RemoveUser(userID string) {
	for i, id := range r.Users {
		if id == userID {
			r.Users = append(r.Users[:i], r.Users[i+1:]...)
			return
		}
	}
}

// IsModerator reports whether the user id is on the moderator roster.
func (r *Room) IsModerator(userID string) bool {
	for _, id := range r.Moderators {
		if id == userID {
			return true
		}
	}
	return false
}

// AddModerator grants room-scoped moderator status if not already granted.
func (r *Room) AddModerator(userID string) {
	if !r.IsModerator(userID) {
		r.Moderators = append(r.Moderators, userID)
	}
}

// RemoveModerator revokes room-scoped moderator status.
func (r *Room) RemoveModerator(userID string) {
	for i, id := range r.Moderators {
		if id == userID {
			r.Moderators = append(r.Moderators[:i], r.Moderators[i+1:]...)
			return
		}
	}
}

// AppendMessage appends to the history, evicting the oldest entries once
// the capacity is exceeded.
func (r *Room) AppendMessage(m Message) {
	r.Messages = append(r.Messages, m)
	if len(r.Messages) > RoomHistoryCap {
		r.Messages = r.Messages[len(r.Messages)-RoomHistoryCap:]
	}
}

// RecentMessages returns the last n messages, newest last.
func (r *Room) RecentMessages(n int) []Message {
	if len(r.Messages) <= n {
		return r.Messages
	}
	return r.Messages[len(r.Messages)-n:]
}

// RoomSummary is the shape pushed in rooms-list events.
type RoomSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
	UserCount   int    `json:"userCount"`
	HasPassword bool   `json:"hasPassword"`
	IsOfficial  bool   `json:"isOfficial"`
}
