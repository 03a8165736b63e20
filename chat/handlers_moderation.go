package chat

import "coldroom/domain"

// handleMuteUser enforces the mute policy: the owner may mute anyone but
// themselves, permanently (duration 0) or temporarily; a moderator may
// only issue temporary mutes scoped to a room they moderate, and never
// against the owner.
func (h *Hub) handleMuteUser(sess *Session, p mutePayload) {
	actor := h.currentUser(sess)
	target := h.store.Users[p.UserID]
	if actor == nil || target == nil {
		h.sendError(sess, "Invalid user")
		return
	}
	if target.IsOwner {
		h.sendError(sess, "Cannot mute owner")
		return
	}

	roomID := p.RoomID
	if roomID == "" {
		roomID = sess.roomID
	}

	rec := domain.MuteRecord{
		UserID:      target.ID,
		DisplayName: target.DisplayName,
		Reason:      p.Reason,
		MutedBy:     actor.DisplayName,
		MutedByID:   actor.ID,
		ByOwner:     actor.IsOwner,
	}
	if rec.Reason == "" {
		rec.Reason = "Rule violation"
	}

	switch {
	case actor.IsOwner:
		// Owner mutes are global; room scoping only matters for
		// moderator-issued ones.
		if p.Duration <= 0 {
			rec.Permanent = true
		} else {
			rec.ExpiresAt = h.now().UnixMilli() + int64(p.Duration)*60_000
		}
	default:
		room, ok := h.store.Rooms[roomID]
		if !ok || !room.IsModerator(actor.ID) {
			h.sendError(sess, "No permission")
			return
		}
		if p.Duration <= 0 {
			h.sendError(sess, "Moderators can only issue temporary mutes")
			return
		}
		// An owner-issued mute must never be downgraded to one that
		// expires on its own.
		if prev, ok := h.store.Muted[target.ID]; ok && (prev.Permanent || prev.ByOwner) {
			h.sendError(sess, "No permission")
			return
		}
		rec.RoomID = roomID
		rec.ExpiresAt = h.now().UnixMilli() + int64(p.Duration)*60_000
	}

	h.store.Muted[target.ID] = &rec
	h.dirty = true
	h.sendAction(sess, "Muted "+target.DisplayName)
	h.log.Info().Str("target", target.ID).Str("by", actor.ID).Bool("permanent", rec.Permanent).Msg("mute issued")
}

func (h *Hub) unmuteOne(actor *domain.User, userID string) bool {
	rec, ok := h.store.Muted[userID]
	if !ok {
		return false
	}
	if !actor.IsOwner {
		// A moderator may only lift temporary mutes in a room they
		// moderate; permanent mutes are owner-lifted only.
		if rec.Permanent || rec.RoomID == "" {
			return false
		}
		room, ok := h.store.Rooms[rec.RoomID]
		if !ok || !room.IsModerator(actor.ID) {
			return false
		}
	}
	delete(h.store.Muted, userID)
	return true
}

func (h *Hub) handleUnmuteUser(sess *Session, p userIDPayload) {
	actor := h.currentUser(sess)
	if actor == nil {
		h.sendError(sess, "Not authenticated")
		return
	}
	if !h.unmuteOne(actor, p.UserID) {
		h.sendError(sess, "No permission")
		return
	}
	h.dirty = true
	h.sendAction(sess, "User unmuted")
}

func (h *Hub) handleUnmuteMultiple(sess *Session, p userIDsPayload) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	for _, id := range p.UserIDs {
		delete(h.store.Muted, id)
	}
	h.dirty = true
	h.sendAction(sess, "Users unmuted")
}

// handleBanUser records the ban, extends it to the target's network origin
// when a live session exposes one, and severs any live sessions with a
// final banned notice.
func (h *Hub) handleBanUser(sess *Session, p banPayload) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "Only owner can ban")
		return
	}
	target := h.store.Users[p.UserID]
	if target == nil || target.IsOwner {
		h.sendError(sess, "Invalid target")
		return
	}

	reason := p.Reason
	if reason == "" {
		reason = "Violation"
	}
	rec := &domain.BanRecord{
		UserID:      target.ID,
		DisplayName: target.DisplayName,
		Reason:      reason,
		BannedBy:    actor.DisplayName,
		BannedAt:    h.now().UnixMilli(),
	}

	live := h.sessionsOf(target.ID)
	if len(live) > 0 && live[0].ip != "" {
		rec.IP = live[0].ip
		h.store.BannedIPs[rec.IP] = true
	}
	h.store.Banned[target.ID] = rec
	h.dirty = true

	for _, ts := range live {
		h.forceDisconnect(ts, EvtBanned, reasonPayload{Reason: reason})
	}
	h.sendAction(sess, "Banned "+target.DisplayName)
	h.log.Info().Str("target", target.ID).Str("reason", reason).Msg("user banned")
}

func (h *Hub) unbanOne(userID string) {
	if rec, ok := h.store.Banned[userID]; ok && rec.IP != "" {
		delete(h.store.BannedIPs, rec.IP)
	}
	delete(h.store.Banned, userID)
}

func (h *Hub) handleUnbanUser(sess *Session, p userIDPayload) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	h.unbanOne(p.UserID)
	h.dirty = true
	h.sendAction(sess, "User unbanned")
}

func (h *Hub) handleUnbanMultiple(sess *Session, p userIDsPayload) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	for _, id := range p.UserIDs {
		h.unbanOne(id)
	}
	h.dirty = true
	h.sendAction(sess, "Users unbanned")
}

// handleModerator grants or revokes room-scoped moderator status. Owner
// only: creating a room never confers moderation.
func (h *Hub) handleModerator(sess *Session, p moderatorPayload, grant bool) {
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
	target, ok := h.store.Users[p.UserID]
	if !ok {
		h.sendError(sess, "Invalid user")
		return
	}
	if grant {
		room.AddModerator(target.ID)
		h.sendAction(sess, target.DisplayName+" is now moderator")
	} else {
		room.RemoveModerator(target.ID)
		h.sendAction(sess, target.DisplayName+" removed from moderators")
	}
	h.dirty = true
	h.pushUsersList(room.ID)
}

func (h *Hub) handleGetMutedList(sess *Session) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	list := make([]domain.MuteRecord, 0, len(h.store.Muted))
	for _, rec := range h.store.Muted {
		list = append(list, *rec)
	}
	h.sendEvent(sess, EvtMutedList, list)
}

func (h *Hub) handleGetBannedList(sess *Session) {
	actor := h.currentUser(sess)
	if actor == nil || !actor.IsOwner {
		h.sendError(sess, "No permission")
		return
	}
	list := make([]domain.BanRecord, 0, len(h.store.Banned))
	for _, rec := range h.store.Banned {
		list = append(list, *rec)
	}
	h.sendEvent(sess, EvtBannedList, list)
}
