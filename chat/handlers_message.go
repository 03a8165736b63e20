package chat

import (
	"coldroom/domain"

	"github.com/google/uuid"
)

// canSend runs the enforcement order shared by every message kind:
// authentication and room presence first, then the silence flag (owner
// exempt), then the mute check. Rejections go back to the sender only.
func (h *Hub) canSend(sess *Session) (*domain.User, *domain.Room, bool) {
	user := h.currentUser(sess)
	room := h.store.Rooms[sess.roomID]
	if user == nil || room == nil {
		h.sendError(sess, "Not in room or not authenticated")
		return nil, nil, false
	}
	if room.IsSilenced && !user.IsOwner {
		h.sendError(sess, "Room is silenced")
		return nil, nil, false
	}
	if rec, muted := h.store.ActiveMute(user.ID, h.now()); muted {
		// Moderator-issued mutes are scoped to one room; owner mutes
		// apply everywhere.
		if rec.RoomID == "" || rec.RoomID == room.ID {
			h.sendError(sess, "You are muted")
			return nil, nil, false
		}
	}
	return user, room, true
}

func (h *Hub) newMessage(user *domain.User, room *domain.Room, kind string) domain.Message {
	return domain.Message{
		ID:          "msg_" + uuid.NewString(),
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
		Kind:        kind,
		Timestamp:   h.now().UnixMilli(),
		IsOwner:     user.IsOwner,
		IsModerator: room.IsModerator(user.ID),
		RoomID:      room.ID,
	}
}

func (h *Hub) appendAndBroadcast(room *domain.Room, msg domain.Message) {
	room.AppendMessage(msg)
	h.dirty = true
	h.broadcastRoom(room.ID, EvtNewMessage, msg)
}

func (h *Hub) handleSendMessage(sess *Session, p sendMessagePayload) {
	user, room, ok := h.canSend(sess)
	if !ok {
		return
	}
	msg := h.newMessage(user, room, domain.MessageText)
	msg.Text = domain.Truncate(p.Text)
	h.appendAndBroadcast(room, msg)
}

func (h *Hub) handleSendImage(sess *Session, p sendImagePayload) {
	user, room, ok := h.canSend(sess)
	if !ok {
		return
	}
	if !user.CanSendImages {
		h.sendError(sess, "No permission to send images")
		return
	}
	msg := h.newMessage(user, room, domain.MessageImage)
	msg.ImageURL = p.ImageURL
	h.appendAndBroadcast(room, msg)
}

func (h *Hub) handleSendVideo(sess *Session, p sendVideoPayload) {
	user, room, ok := h.canSend(sess)
	if !ok {
		return
	}
	if !user.CanSendVideos {
		h.sendError(sess, "No permission to send videos")
		return
	}
	msg := h.newMessage(user, room, domain.MessageVideo)
	msg.VideoURL = p.VideoURL
	h.appendAndBroadcast(room, msg)
}

// handleEditMessage rewrites text in place. Only the author may edit, and
// only the text and edited flag change. The room id defaults to the
// session's current room so authors can still edit after moving on.
func (h *Hub) handleEditMessage(sess *Session, p editMessagePayload) {
	roomID := p.RoomID
	if roomID == "" {
		roomID = sess.roomID
	}
	room, ok := h.store.Rooms[roomID]
	if !ok {
		h.sendError(sess, "Message not found or permission denied")
		return
	}
	for i := range room.Messages {
		m := &room.Messages[i]
		if m.ID == p.MessageID && m.UserID == sess.userID {
			m.Text = domain.Truncate(p.NewText)
			m.Edited = true
			h.dirty = true
			h.broadcastRoom(room.ID, EvtMessageEdited, messageEditedPayload{
				MessageID: m.ID,
				NewText:   m.Text,
			})
			return
		}
	}
	h.sendError(sess, "Message not found or permission denied")
}

// handleDeleteMessage removes a message. Allowed for the owner, a
// moderator of the room, or the original author.
func (h *Hub) handleDeleteMessage(sess *Session, p deleteMessagePayload) {
	actor := h.currentUser(sess)
	if actor == nil {
		h.sendError(sess, "Not authenticated")
		return
	}
	roomID := p.RoomID
	if roomID == "" {
		roomID = sess.roomID
	}
	room, ok := h.store.Rooms[roomID]
	if !ok {
		h.sendError(sess, "Room not found")
		return
	}
	for i, m := range room.Messages {
		if m.ID != p.MessageID {
			continue
		}
		allowed := actor.IsOwner || room.IsModerator(actor.ID) || m.UserID == actor.ID
		if !allowed {
			h.sendError(sess, "No permission")
			return
		}
		room.Messages = append(room.Messages[:i], room.Messages[i+1:]...)
		h.dirty = true
		h.broadcastRoom(room.ID, EvtMessageDeleted, map[string]string{"messageId": p.MessageID})
		return
	}
	h.sendError(sess, "Message not found")
}

func (h *Hub) handleSendPrivate(sess *Session, p privateMessagePayload) {
	sender := h.currentUser(sess)
	receiver := h.store.Users[p.ToUserID]
	if sender == nil || receiver == nil {
		h.sendError(sess, "Invalid users")
		return
	}
	msg := domain.PrivateMessage{
		ID:        "pm_" + uuid.NewString(),
		From:      sender.ID,
		To:        receiver.ID,
		FromName:  sender.DisplayName,
		Text:      domain.Truncate(p.Text),
		Timestamp: h.now().UnixMilli(),
	}
	h.store.AppendPrivateMessage(msg)
	h.dirty = true

	for _, rs := range h.sessionsOf(receiver.ID) {
		h.sendEvent(rs, EvtNewPrivate, msg)
	}
	h.sendEvent(sess, EvtPrivateSent, msg)
}

func (h *Hub) handleGetPrivate(sess *Session, p getPrivatePayload) {
	if sess.userID == "" {
		h.sendError(sess, "Not authenticated")
		return
	}
	thread := h.store.PrivateThread(sess.userID, p.WithUserID)
	if thread == nil {
		thread = []domain.PrivateMessage{}
	}
	h.sendEvent(sess, EvtPrivateList, privateListPayload{
		WithUserID: p.WithUserID,
		Messages:   thread,
	})
}
