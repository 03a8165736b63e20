package chat

import (
	"strings"
	"time"

	"coldroom/domain"

	"github.com/google/uuid"
)

const (
	maxRoomNameLen = 100
	maxRoomDescLen = 500
)

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}

func (h *Hub) handleCreateRoom(sess *Session, p createRoomPayload) {
	user := h.currentUser(sess)
	if user == nil {
		h.sendError(sess, "Not authenticated")
		return
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Untitled"
	}
	room := &domain.Room{
		ID:          "room_" + uuid.NewString(),
		Name:        clip(name, maxRoomNameLen),
		Description: clip(p.Description, maxRoomDescLen),
		CreatedBy:   user.DisplayName,
		CreatorID:   user.ID,
		Users:       []string{},
		Messages:    []domain.Message{},
		Moderators:  []string{},
		CreatedAt:   h.now().UTC().Format(time.RFC3339),
	}
	if p.Password != "" {
		hash, err := h.hasher.Hash(p.Password)
		if err != nil {
			h.log.Error().Err(err).Msg("room password hashing failed")
			h.sendError(sess, "Could not create room")
			return
		}
		room.HasPassword = true
		room.PasswordHash = hash
	}
	h.store.Rooms[room.ID] = room

	// Creator auto-joins. Creating a room grants no moderator status.
	h.moveToRoom(sess, user, room)
	h.dirty = true

	h.sendEvent(sess, EvtRoomCreated, roomCreatedPayload{RoomID: room.ID, RoomName: room.Name})
	h.pushRoomsList()
	h.log.Info().Str("room", room.ID).Str("creator", user.ID).Msg("room created")
}

func (h *Hub) handleJoinRoom(sess *Session, p joinRoomPayload) {
	user := h.currentUser(sess)
	if user == nil {
		h.sendError(sess, "Not authenticated")
		return
	}
	room, ok := h.store.Rooms[p.RoomID]
	if !ok {
		h.sendError(sess, "Room not found")
		return
	}

	// Wrong password never mutates membership. The owner walks through
	// any door.
	if room.HasPassword && !user.IsOwner {
		match, err := h.hasher.Compare(room.PasswordHash, p.Password)
		if err != nil || !match {
			h.sendError(sess, "Wrong password")
			return
		}
	}

	prevRoomID := sess.roomID
	h.moveToRoom(sess, user, room)
	h.dirty = true

	settings := h.store.Settings()
	joined := roomJoinedPayload{Room: h.roomSnapshot(room, user.ID, settings)}
	if room.ID == domain.GlobalRoomID {
		joined.YouTube = settings.YouTube
	}
	h.sendEvent(sess, EvtRoomJoined, joined)

	h.pushUsersList(room.ID)
	if prevRoomID != "" && prevRoomID != room.ID {
		h.pushUsersList(prevRoomID)
	}
	h.pushRoomsList()
}

// moveToRoom switches the session's membership and broadcast subscription.
// Leaving the official room by joining elsewhere keeps its membership —
// only a disconnect evicts a user from the global room.
func (h *Hub) moveToRoom(sess *Session, user *domain.User, target *domain.Room) {
	if sess.roomID != "" && sess.roomID != target.ID {
		if prev, ok := h.store.Rooms[sess.roomID]; ok && !prev.IsOfficial {
			prev.RemoveUser(user.ID)
		}
	}
	target.AddUser(user.ID)
	h.joinGroup(sess, target.ID)
	h.lastRoom[user.ID] = target.ID
}

func (h *Hub) handleUpdateRoom(sess *Session, p updateRoomPayload) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	room, ok := h.store.Rooms[p.RoomID]
	if !ok {
		h.sendError(sess, "Room not found")
		return
	}
	if p.Name != nil {
		room.Name = clip(strings.TrimSpace(*p.Name), maxRoomNameLen)
	}
	if p.Description != nil {
		room.Description = clip(*p.Description, maxRoomDescLen)
	}
	if p.Password != nil {
		if *p.Password == "" {
			room.HasPassword = false
			room.PasswordHash = ""
		} else {
			hash, err := h.hasher.Hash(*p.Password)
			if err != nil {
				h.log.Error().Err(err).Msg("room password hashing failed")
				h.sendError(sess, "Could not update room")
				return
			}
			room.HasPassword = true
			room.PasswordHash = hash
		}
	}
	h.dirty = true
	h.broadcastRoom(room.ID, EvtRoomUpdated, map[string]string{
		"name":        room.Name,
		"description": room.Description,
	})
	h.pushRoomsList()
}

func (h *Hub) handleDeleteRoom(sess *Session, p roomIDPayload) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	room, ok := h.store.Rooms[p.RoomID]
	if !ok || room.IsOfficial {
		h.sendError(sess, "Cannot delete room")
		return
	}

	h.broadcastRoom(room.ID, EvtRoomDeleted, map[string]string{"message": "Room deleted"})

	// Evicted members land back in the global room.
	global := h.store.Rooms[domain.GlobalRoomID]
	settings := h.store.Settings()
	for member := range h.groups[room.ID] {
		user := h.currentUser(member)
		if user == nil {
			continue
		}
		global.AddUser(user.ID)
		h.joinGroup(member, global.ID)
		h.lastRoom[user.ID] = global.ID
		joined := roomJoinedPayload{Room: h.roomSnapshot(global, user.ID, settings), YouTube: settings.YouTube}
		h.sendEvent(member, EvtRoomJoined, joined)
	}

	delete(h.store.Rooms, room.ID)
	h.dirty = true
	h.pushRoomsList()
	h.pushUsersList(global.ID)
	h.log.Info().Str("room", room.ID).Msg("room deleted")
}

func (h *Hub) handleSilenceRoom(sess *Session, p roomIDPayload, silenced bool) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	room, ok := h.store.Rooms[p.RoomID]
	if !ok {
		h.sendError(sess, "Room not found")
		return
	}
	room.IsSilenced = silenced
	h.dirty = true
	h.broadcastRoom(room.ID, EvtRoomSilenced, roomSilencedPayload{RoomID: room.ID, Silenced: silenced})
}

func (h *Hub) handleCleanChat(sess *Session, p roomIDPayload) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	room, ok := h.store.Rooms[p.RoomID]
	if !ok {
		h.sendError(sess, "Room not found")
		return
	}
	room.Messages = []domain.Message{}
	h.dirty = true
	h.broadcastRoom(room.ID, EvtChatCleaned, map[string]string{"message": "Chat cleaned"})
}

func (h *Hub) handleCleanAllRooms(sess *Session) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	for _, room := range h.store.Rooms {
		room.Messages = []domain.Message{}
		h.broadcastRoom(room.ID, EvtChatCleaned, map[string]string{"message": "All chats cleaned"})
	}
	h.dirty = true
}

func (h *Hub) handleGetUsers(sess *Session, p roomIDPayload) {
	room, ok := h.store.Rooms[p.RoomID]
	if !ok {
		h.sendEvent(sess, EvtUsersList, []domain.UserSummary{})
		return
	}
	h.sendEvent(sess, EvtUsersList, h.userSummaries(room))
}
