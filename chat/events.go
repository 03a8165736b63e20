package chat

import (
	"encoding/json"

	"coldroom/domain"
)

// Event is the wire envelope in both directions.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> server command types.
const (
	CmdLogin             = "login"
	CmdRegister          = "register"
	CmdResume            = "resume"
	CmdSendMessage       = "send-message"
	CmdEditMessage       = "edit-message"
	CmdSendImage         = "send-image"
	CmdSendVideo         = "send-video"
	CmdDeleteMessage     = "delete-message"
	CmdCreateRoom        = "create-room"
	CmdJoinRoom          = "join-room"
	CmdUpdateRoom        = "update-room"
	CmdDeleteRoom        = "delete-room"
	CmdSilenceRoom       = "silence-room"
	CmdUnsilenceRoom     = "unsilence-room"
	CmdCleanChat         = "clean-chat"
	CmdCleanAllRooms     = "clean-all-rooms"
	CmdMuteUser          = "mute-user"
	CmdUnmuteUser        = "unmute-user"
	CmdUnmuteMultiple    = "unmute-multiple"
	CmdBanUser           = "ban-user"
	CmdUnbanUser         = "unban-user"
	CmdUnbanMultiple     = "unban-multiple"
	CmdAddModerator      = "add-moderator"
	CmdRemoveModerator   = "remove-moderator"
	CmdChangeDisplayName = "change-display-name"
	CmdGrantMedia        = "grant-media"
	CmdDeleteAccount     = "delete-account"
	CmdSendPrivate       = "send-private-message"
	CmdGetPrivate        = "get-private-messages"
	CmdSendSupport       = "send-support-message"
	CmdGetSupport        = "get-support-messages"
	CmdDeleteSupport     = "delete-support-message"
	CmdUpdateSettings    = "update-settings"
	CmdTogglePartyMode   = "toggle-party-mode"
	CmdStartYouTube      = "start-youtube-watch"
	CmdStopYouTube       = "stop-youtube-watch"
	CmdYouTubeResize     = "youtube-resize"
	CmdGetYouTubeState   = "get-youtube-state"
	CmdGetRooms          = "get-rooms"
	CmdGetUsers          = "get-users"
	CmdGetMutedList      = "get-muted-list"
	CmdGetBannedList     = "get-banned-list"
	CmdPing              = "ping"
)

// Server -> client event types.
const (
	EvtLoginSuccess     = "login-success"
	EvtLoginError       = "login-error"
	EvtRegisterSuccess  = "register-success"
	EvtRegisterError    = "register-error"
	EvtResumeSuccess    = "resume-success"
	EvtResumeError      = "resume-error"
	EvtBannedUser       = "banned-user"
	EvtError            = "error"
	EvtActionSuccess    = "action-success"
	EvtNewMessage       = "new-message"
	EvtMessageEdited    = "message-edited"
	EvtMessageDeleted   = "message-deleted"
	EvtRoomCreated      = "room-created"
	EvtRoomJoined       = "room-joined"
	EvtRoomUpdated      = "room-updated"
	EvtRoomDeleted      = "room-deleted"
	EvtRoomSilenced     = "room-silenced"
	EvtChatCleaned      = "chat-cleaned"
	EvtRoomsList        = "rooms-list"
	EvtUsersList        = "users-list"
	EvtMutedList        = "muted-list"
	EvtBannedList       = "banned-list"
	EvtNewPrivate       = "new-private-message"
	EvtPrivateSent      = "private-message-sent"
	EvtPrivateList      = "private-messages-list"
	EvtSupportSent      = "support-message-sent"
	EvtSupportList      = "support-messages-list"
	EvtSettingsUpdated  = "settings-updated"
	EvtPartyModeChanged = "party-mode-changed"
	EvtYouTubeStarted   = "youtube-started"
	EvtYouTubeStopped   = "youtube-stopped"
	EvtYouTubeResize    = "youtube-resize"
	EvtYouTubeState     = "youtube-state"
	EvtBanned           = "banned"
	EvtAccountDeleted   = "account-deleted"
)

// Command payloads. Optional fields that must distinguish "absent" from
// "empty" are pointers.

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerPayload struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Gender      string `json:"gender"`
}

type resumePayload struct {
	Token string `json:"token"`
}

type sendMessagePayload struct {
	Text string `json:"text"`
}

type editMessagePayload struct {
	MessageID string `json:"messageId"`
	NewText   string `json:"newText"`
	RoomID    string `json:"roomId"`
}

type sendImagePayload struct {
	ImageURL string `json:"imageUrl"`
}

type sendVideoPayload struct {
	VideoURL string `json:"videoUrl"`
}

type deleteMessagePayload struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
}

type createRoomPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Password    string `json:"password"`
}

type joinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
}

type updateRoomPayload struct {
	RoomID      string  `json:"roomId"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Password    *string `json:"password"`
}

type roomIDPayload struct {
	RoomID string `json:"roomId"`
}

type mutePayload struct {
	UserID   string `json:"userId"`
	Duration int    `json:"duration"` // minutes, 0 = permanent
	Reason   string `json:"reason"`
	RoomID   string `json:"roomId"`
}

type userIDPayload struct {
	UserID string `json:"userId"`
}

type userIDsPayload struct {
	UserIDs []string `json:"userIds"`
}

type banPayload struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

type moderatorPayload struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}

type displayNamePayload struct {
	NewName string `json:"newName"`
}

type grantMediaPayload struct {
	UserID string `json:"userId"`
	Images *bool  `json:"images"`
	Videos *bool  `json:"videos"`
}

type privateMessagePayload struct {
	ToUserID string `json:"toUserId"`
	Text     string `json:"text"`
}

type getPrivatePayload struct {
	WithUserID string `json:"withUserId"`
}

type supportPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

type messageIDPayload struct {
	MessageID string `json:"messageId"`
}

type settingsPayload struct {
	SiteLogo         *string  `json:"siteLogo"`
	SiteTitle        *string  `json:"siteTitle"`
	BackgroundColor  *string  `json:"backgroundColor"`
	LoginMusic       *string  `json:"loginMusic"`
	ChatMusic        *string  `json:"chatMusic"`
	LoginMusicVolume *float64 `json:"loginMusicVolume"`
	ChatMusicVolume  *float64 `json:"chatMusicVolume"`
}

type partyModePayload struct {
	RoomID  string `json:"roomId"`
	Enabled bool   `json:"enabled"`
}

type startYouTubePayload struct {
	VideoID string `json:"videoId"`
	Size    string `json:"size"`
}

type youTubeResizePayload struct {
	Size string `json:"size"`
}

// Server event payloads.

type userPayload struct {
	ID            string   `json:"id"`
	Username      string   `json:"username"`
	DisplayName   string   `json:"displayName"`
	Avatar        string   `json:"avatar"`
	Gender        string   `json:"gender"`
	IsOwner       bool     `json:"isOwner"`
	IsModerator   bool     `json:"isModerator"`
	CanSendImages bool     `json:"canSendImages"`
	CanSendVideos bool     `json:"canSendVideos"`
	SpecialBadges []string `json:"specialBadges"`
}

type roomPayload struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Messages    []domain.Message `json:"messages"`
	IsCreator   bool             `json:"isCreator"`
	IsModerator bool             `json:"isModerator"`
	IsSilenced  bool             `json:"isSilenced"`
	PartyMode   bool             `json:"partyMode"`
}

type loginSuccessPayload struct {
	User           userPayload           `json:"user"`
	Room           roomPayload           `json:"room"`
	SystemSettings domain.SystemSettings `json:"systemSettings"`
	YouTube        *domain.WatchSession  `json:"youtube"`
	Token          string                `json:"token"`
}

type roomJoinedPayload struct {
	Room    roomPayload          `json:"room"`
	YouTube *domain.WatchSession `json:"youtube,omitempty"`
}

type messageEditedPayload struct {
	MessageID string `json:"messageId"`
	NewText   string `json:"newText"`
}

type roomCreatedPayload struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
}

type roomSilencedPayload struct {
	RoomID   string `json:"roomId"`
	Silenced bool   `json:"silenced"`
}

type reasonPayload struct {
	Reason string `json:"reason"`
}

type privateListPayload struct {
	WithUserID string                  `json:"withUserId"`
	Messages   []domain.PrivateMessage `json:"messages"`
}

// encodeEvent marshals an envelope for the wire. Marshal failures are
// programming errors on server-built payloads; callers treat a nil slice as
// "nothing to send".
func encodeEvent(eventType string, payload any) []byte {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil
		}
		raw = b
	}
	data, err := json.Marshal(Event{Type: eventType, Payload: raw})
	if err != nil {
		return nil
	}
	return data
}
