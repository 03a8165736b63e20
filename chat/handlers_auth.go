package chat

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"coldroom/domain"

	"github.com/google/uuid"
)

var usernameFormat = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

const minPasswordLen = 6

func (h *Hub) handleLogin(sess *Session, p loginPayload) {
	if p.Username == "" || p.Password == "" {
		h.sendEvent(sess, EvtLoginError, "Missing credentials")
		return
	}

	user, ok := h.store.FindUserByUsername(p.Username)
	if !ok {
		h.sendEvent(sess, EvtLoginError, "Invalid credentials")
		return
	}
	match, err := h.hasher.Compare(user.PasswordHash, p.Password)
	if err != nil {
		h.log.Error().Err(err).Str("username", p.Username).Msg("password comparison failed")
		h.sendEvent(sess, EvtLoginError, "Invalid credentials")
		return
	}
	if !match {
		h.sendEvent(sess, EvtLoginError, "Invalid credentials")
		return
	}

	if reason, banned := h.banReason(user.ID, sess.ip); banned {
		// The connection stays open: banned users may still file
		// support messages, nothing else.
		h.sendEvent(sess, EvtBannedUser, reasonPayload{Reason: reason})
		return
	}

	h.bindUser(sess, user, domain.GlobalRoomID)

	token, err := h.tokens.Generate(user.ID, h.now())
	if err != nil {
		h.log.Error().Err(err).Str("user", user.ID).Msg("resume token generation failed")
	}
	h.sendEvent(sess, EvtLoginSuccess, h.sessionSnapshot(sess, user, token))
	h.log.Info().Str("user", user.ID).Str("username", user.Username).Msg("login")

	h.pushRoomsList()
	h.pushUsersList(domain.GlobalRoomID)
}

func (h *Hub) handleRegister(sess *Session, p registerPayload) {
	if p.Username == "" || p.Password == "" || p.DisplayName == "" {
		h.sendEvent(sess, EvtRegisterError, "Missing fields")
		return
	}
	if !usernameFormat.MatchString(p.Username) {
		h.sendEvent(sess, EvtRegisterError, "Username must be 3-20 letters, digits or underscores")
		return
	}
	if utf8.RuneCountInString(p.Password) < minPasswordLen {
		h.sendEvent(sess, EvtRegisterError, "Password too short")
		return
	}
	name := strings.TrimSpace(p.DisplayName)
	if name == "" || utf8.RuneCountInString(name) > 30 {
		h.sendEvent(sess, EvtRegisterError, "Invalid display name")
		return
	}
	if h.store.UsernameTaken(p.Username) {
		h.sendEvent(sess, EvtRegisterError, "Username exists")
		return
	}
	if h.store.DisplayNameTaken(name, "") {
		h.sendEvent(sess, EvtRegisterError, "Display name exists")
		return
	}

	hash, err := h.hasher.Hash(p.Password)
	if err != nil {
		h.log.Error().Err(err).Msg("password hashing failed")
		h.sendEvent(sess, EvtRegisterError, "Registration failed")
		return
	}

	gender := p.Gender
	if gender != domain.GenderPrince && gender != domain.GenderPrincess {
		gender = domain.GenderPrincess
	}
	user := &domain.User{
		ID:            "user_" + uuid.NewString(),
		Username:      p.Username,
		DisplayName:   name,
		PasswordHash:  hash,
		Avatar:        domain.AvatarForGender(gender),
		Gender:        gender,
		SpecialBadges: []string{},
		JoinDate:      h.now().UTC().Format(time.RFC3339),
	}
	h.store.Users[user.ID] = user
	h.store.Private[user.ID] = map[string][]domain.PrivateMessage{}
	h.dirty = true

	h.sendEvent(sess, EvtRegisterSuccess, map[string]string{
		"message":  "Account created!",
		"username": user.Username,
	})
	h.log.Info().Str("user", user.ID).Str("username", user.Username).Msg("registered")
}

// handleResume re-binds a dropped client to its identity from a signed
// token and rejoins the last known room, falling back to the global room
// when that room no longer exists.
func (h *Hub) handleResume(sess *Session, p resumePayload) {
	userID, err := h.tokens.Verify(p.Token)
	if err != nil {
		h.log.Warn().Err(err).Str("ip", sess.ip).Msg("resume with bad token")
		h.sendEvent(sess, EvtResumeError, "Session expired, log in again")
		return
	}
	user, ok := h.store.Users[userID]
	if !ok {
		h.sendEvent(sess, EvtResumeError, "Account no longer exists")
		return
	}
	if reason, banned := h.banReason(user.ID, sess.ip); banned {
		h.sendEvent(sess, EvtBannedUser, reasonPayload{Reason: reason})
		return
	}

	roomID := h.lastRoom[userID]
	if _, ok := h.store.Rooms[roomID]; !ok {
		roomID = domain.GlobalRoomID
	}
	h.bindUser(sess, user, roomID)

	token, err := h.tokens.Generate(user.ID, h.now())
	if err != nil {
		h.log.Error().Err(err).Str("user", user.ID).Msg("resume token generation failed")
	}
	h.sendEvent(sess, EvtResumeSuccess, h.sessionSnapshot(sess, user, token))
	h.pushUsersList(roomID)
}

func (h *Hub) handleChangeDisplayName(sess *Session, p displayNamePayload) {
	user := h.currentUser(sess)
	if user == nil {
		h.sendError(sess, "Not authenticated")
		return
	}
	name := strings.TrimSpace(p.NewName)
	if name == "" || utf8.RuneCountInString(name) > 30 {
		h.sendError(sess, "Invalid display name")
		return
	}
	if h.store.DisplayNameTaken(name, user.ID) {
		h.sendError(sess, "Display name exists")
		return
	}
	user.DisplayName = name
	h.dirty = true
	h.sendAction(sess, "Display name updated")
	if sess.roomID != "" {
		h.pushUsersList(sess.roomID)
	}
}

func (h *Hub) handleGrantMedia(sess *Session, p grantMediaPayload) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	target, ok := h.store.Users[p.UserID]
	if !ok {
		h.sendError(sess, "Invalid user")
		return
	}
	if p.Images != nil {
		target.CanSendImages = *p.Images
	}
	if p.Videos != nil {
		target.CanSendVideos = *p.Videos
	}
	h.dirty = true
	h.sendAction(sess, "Permissions updated for "+target.DisplayName)
}

func (h *Hub) handleDeleteAccount(sess *Session, p userIDPayload) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	target, ok := h.store.Users[p.UserID]
	if !ok || target.IsOwner {
		h.sendError(sess, "Invalid target")
		return
	}

	h.store.DeleteUserCascade(p.UserID)
	delete(h.online, p.UserID)
	delete(h.lastRoom, p.UserID)
	for _, ts := range h.sessionsOf(p.UserID) {
		h.forceDisconnect(ts, EvtAccountDeleted, map[string]string{"message": "Account deleted"})
	}
	h.dirty = true

	h.pushRoomsList()
	h.sendAction(sess, "Deleted: "+target.DisplayName)
	h.log.Info().Str("user", p.UserID).Msg("account deleted")
}

func (h *Hub) handlePing(sess *Session) {
	if sess.userID != "" {
		h.online[sess.userID] = h.now().UnixMilli()
	}
}

// banReason checks both the account and the connecting network origin.
func (h *Hub) banReason(userID, ip string) (string, bool) {
	if rec, ok := h.store.Banned[userID]; ok {
		return rec.Reason, true
	}
	if ip != "" && h.store.BannedIPs[ip] {
		return "Banned", true
	}
	return "", false
}

// bindUser attaches an authenticated identity to the session and joins the
// target room's membership and broadcast group.
func (h *Hub) bindUser(sess *Session, user *domain.User, roomID string) {
	sess.userID = user.ID
	h.online[user.ID] = h.now().UnixMilli()

	room := h.store.Rooms[roomID]
	room.AddUser(user.ID)
	h.joinGroup(sess, roomID)
	h.lastRoom[user.ID] = roomID
	h.dirty = true
}

// sessionSnapshot builds the login/resume payload: the user, their current
// room with trailing history, settings and any active watch session.
func (h *Hub) sessionSnapshot(sess *Session, user *domain.User, token string) loginSuccessPayload {
	room := h.store.Rooms[sess.roomID]
	settings := h.store.Settings()
	return loginSuccessPayload{
		User: userPayload{
			ID:            user.ID,
			Username:      user.Username,
			DisplayName:   user.DisplayName,
			Avatar:        user.Avatar,
			Gender:        user.Gender,
			IsOwner:       user.IsOwner,
			IsModerator:   room.IsModerator(user.ID),
			CanSendImages: user.CanSendImages,
			CanSendVideos: user.CanSendVideos,
			SpecialBadges: user.SpecialBadges,
		},
		Room:           h.roomSnapshot(room, user.ID, settings),
		SystemSettings: settings,
		YouTube:        settings.YouTube,
		Token:          token,
	}
}

func (h *Hub) roomSnapshot(room *domain.Room, userID string, settings domain.SystemSettings) roomPayload {
	return roomPayload{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
		Messages:    room.RecentMessages(domain.RoomSnapshotSize),
		IsCreator:   room.CreatorID == userID,
		IsModerator: room.IsModerator(userID),
		IsSilenced:  room.IsSilenced,
		PartyMode:   settings.PartyMode[room.ID],
	}
}
