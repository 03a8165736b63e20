package chat

import (
	"coldroom/domain"

	"github.com/google/uuid"
)

func (h *Hub) handleUpdateSettings(sess *Session, p settingsPayload) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	h.store.UpdateSettings(func(s *domain.SystemSettings) {
		if p.SiteLogo != nil {
			s.SiteLogo = *p.SiteLogo
		}
		if p.SiteTitle != nil {
			s.SiteTitle = *p.SiteTitle
		}
		if p.BackgroundColor != nil {
			s.BackgroundColor = *p.BackgroundColor
		}
		if p.LoginMusic != nil {
			s.LoginMusic = *p.LoginMusic
		}
		if p.ChatMusic != nil {
			s.ChatMusic = *p.ChatMusic
		}
		if p.LoginMusicVolume != nil {
			s.LoginMusicVolume = *p.LoginMusicVolume
		}
		if p.ChatMusicVolume != nil {
			s.ChatMusicVolume = *p.ChatMusicVolume
		}
	})
	h.dirty = true

	// Even unauthenticated login-screen clients reflect branding changes.
	h.broadcastAll(EvtSettingsUpdated, h.store.Settings())
	h.sendAction(sess, "Settings updated")
}

func (h *Hub) handleTogglePartyMode(sess *Session, p partyModePayload) {
	actor := h.currentUser(sess)
	if actor == nil {
		h.sendError(sess, "Invalid request")
		return
	}
	roomID := p.RoomID
	if roomID == "" {
		roomID = sess.roomID
	}
	room, ok := h.store.Rooms[roomID]
	if !ok {
		h.sendError(sess, "Invalid request")
		return
	}
	if !actor.IsOwner && !room.IsModerator(actor.ID) {
		h.sendError(sess, "No permission")
		return
	}
	h.store.UpdateSettings(func(s *domain.SystemSettings) {
		if s.PartyMode == nil {
			s.PartyMode = map[string]bool{}
		}
		s.PartyMode[room.ID] = p.Enabled
	})
	h.dirty = true
	h.broadcastRoom(room.ID, EvtPartyModeChanged, map[string]any{
		"roomId":  room.ID,
		"enabled": p.Enabled,
	})
}

func (h *Hub) handleStartYouTube(sess *Session, p startYouTubePayload) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	if p.VideoID == "" {
		h.sendError(sess, "Missing videoId")
		return
	}
	size := p.Size
	if size != domain.WatchSmall && size != domain.WatchMedium && size != domain.WatchLarge {
		size = domain.WatchMedium
	}
	session := &domain.WatchSession{
		VideoID:   ParseVideoID(p.VideoID),
		StartedAt: h.now().UnixMilli(),
		Size:      size,
		StartedBy: actor.DisplayName,
	}
	h.store.UpdateSettings(func(s *domain.SystemSettings) {
		s.YouTube = session
	})
	h.dirty = true
	h.broadcastRoom(domain.GlobalRoomID, EvtYouTubeStarted, session)
	h.log.Info().Str("video", session.VideoID).Str("size", size).Msg("watch session started")
}

func (h *Hub) handleStopYouTube(sess *Session) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	h.store.UpdateSettings(func(s *domain.SystemSettings) {
		s.YouTube = nil
	})
	h.dirty = true
	h.broadcastRoom(domain.GlobalRoomID, EvtYouTubeStopped, nil)
}

// handleYouTubeResize rebroadcasts the new display size without resetting
// playback position.
func (h *Hub) handleYouTubeResize(sess *Session, p youTubeResizePayload) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	current := h.store.Settings().YouTube
	if current == nil {
		h.sendError(sess, "No youtube session")
		return
	}
	size := p.Size
	if size != domain.WatchSmall && size != domain.WatchMedium && size != domain.WatchLarge {
		size = current.Size
	}
	h.store.UpdateSettings(func(s *domain.SystemSettings) {
		if s.YouTube != nil {
			s.YouTube.Size = size
		}
	})
	h.dirty = true
	h.broadcastRoom(domain.GlobalRoomID, EvtYouTubeResize, map[string]string{"size": size})
}

func (h *Hub) handleGetYouTubeState(sess *Session) {
	h.sendEvent(sess, EvtYouTubeState, h.store.Settings().YouTube)
}

// handleSendSupport accepts notes to the owner inbox from anyone,
// including banned and unauthenticated senders.
func (h *Hub) handleSendSupport(sess *Session, p supportPayload) {
	from := p.From
	if from == "" {
		if user := h.currentUser(sess); user != nil {
			from = user.DisplayName
		} else {
			from = "Anonymous"
		}
	}
	msg := &domain.SupportMessage{
		ID:     "support_" + uuid.NewString(),
		From:   from,
		Text:   domain.Truncate(p.Message),
		SentAt: h.now().UnixMilli(),
		FromIP: sess.ip,
	}
	h.store.Support[msg.ID] = msg
	h.dirty = true
	h.sendEvent(sess, EvtSupportSent, map[string]string{"message": "Message sent"})
}

func (h *Hub) handleGetSupport(sess *Session) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	list := make([]domain.SupportMessage, 0, len(h.store.Support))
	for _, msg := range h.store.Support {
		list = append(list, *msg)
	}
	h.sendEvent(sess, EvtSupportList, list)
}

func (h *Hub) handleDeleteSupport(sess *Session, p messageIDPayload) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	delete(h.store.Support, p.MessageID)
	h.dirty = true
	h.sendAction(sess, "Message deleted")
}
