package chat

import (
	"context"
	"time"

	"coldroom/domain"
	"coldroom/store"

	"github.com/rs/zerolog"
)

const (
	saveInterval      = 30 * time.Second
	sweepInterval     = 60 * time.Second
	presenceThreshold = 5 * time.Minute
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type TokenManager interface {
	Generate(id string, now time.Time) (string, error)
	Verify(token string) (string, error)
}

type envelope struct {
	sess  *Session
	event Event
}

// Hub is the single actor that owns all mutable chat state. Every inbound
// command, registration and ticker fires through one select loop, so
// handlers run to completion with no interleaving — the store needs no
// locking on this path.
type Hub struct {
	store  *store.Store
	hasher PasswordHasher
	tokens TokenManager
	log    zerolog.Logger

	sessions map[*Session]bool
	// groups maps roomID to the sessions subscribed to its broadcasts.
	groups map[string]map[*Session]bool
	// online maps userID to last-seen unix ms; entries idle past the
	// presence threshold are purged so user counts self-correct.
	online map[string]int64
	// lastRoom remembers where a user was for resume-based rejoin.
	lastRoom map[string]string

	register   chan *Session
	unregister chan *Session
	inbound    chan envelope

	dirty bool
	now   func() time.Time
}

func NewHub(st *store.Store, hasher PasswordHasher, tokens TokenManager, log zerolog.Logger) *Hub {
	return &Hub{
		store:      st,
		hasher:     hasher,
		tokens:     tokens,
		log:        log,
		sessions:   make(map[*Session]bool),
		groups:     make(map[string]map[*Session]bool),
		online:     make(map[string]int64),
		lastRoom:   make(map[string]string),
		register:   make(chan *Session, 32),
		unregister: make(chan *Session, 32),
		inbound:    make(chan envelope, 1024),
		now:        time.Now,
	}
}

// Connect wires a fresh connection into the hub and starts its pumps.
func (h *Hub) Connect(conn Conn, ip string) *Session {
	sess := newSession(h, conn, ip)
	h.register <- sess
	go sess.ReadPump()
	go sess.WritePump()
	return sess
}

// Run is the hub actor. It closes started once the loop is receiving and
// exits when ctx is cancelled, flushing a final snapshot.
func (h *Hub) Run(ctx context.Context, started chan struct{}) {
	saveTicker := time.NewTicker(saveInterval)
	sweepTicker := time.NewTicker(sweepInterval)
	defer saveTicker.Stop()
	defer sweepTicker.Stop()

	close(started)

	for {
		select {
		case <-ctx.Done():
			h.saveIfDirty()
			return
		case sess := <-h.register:
			h.sessions[sess] = true
			h.log.Debug().Str("ip", sess.ip).Int("sessions", len(h.sessions)).Msg("connection opened")
		case sess := <-h.unregister:
			h.removeSession(sess)
		case env := <-h.inbound:
			h.dispatch(env.sess, env.event)
		case <-saveTicker.C:
			h.saveIfDirty()
		case now := <-sweepTicker.C:
			h.sweep(now)
		}
	}
}

func (h *Hub) saveIfDirty() {
	if !h.dirty {
		return
	}
	if err := h.store.Save(); err != nil {
		h.log.Error().Err(err).Msg("snapshot save failed")
		return
	}
	h.dirty = false
}

func (h *Hub) sweep(now time.Time) {
	if removed := h.store.SweepExpiredMutes(now); removed > 0 {
		h.log.Info().Int("removed", removed).Msg("expired mutes purged")
		h.dirty = true
	}
	cutoff := now.Add(-presenceThreshold).UnixMilli()
	for userID, lastSeen := range h.online {
		if lastSeen < cutoff {
			delete(h.online, userID)
		}
	}
}

// removeSession tears a connection down: broadcast group, presence and room
// membership all drop.
func (h *Hub) removeSession(sess *Session) {
	if !h.sessions[sess] {
		return
	}
	delete(h.sessions, sess)
	h.leaveGroup(sess)
	// Membership and presence belong to the user, not the connection:
	// only the last live session's disconnect evicts them.
	if sess.userID != "" && len(h.sessionsOf(sess.userID)) == 0 {
		delete(h.online, sess.userID)
		for _, room := range h.store.Rooms {
			room.RemoveUser(sess.userID)
		}
		h.dirty = true
		h.pushRoomsList()
	}
	close(sess.send)
	h.log.Debug().Str("user", sess.userID).Int("sessions", len(h.sessions)).Msg("connection closed")
}

// queue hands an encoded frame to the session's write pump. A full buffer
// means the client stopped draining; the session is dropped rather than
// blocking the actor.
func (h *Hub) queue(sess *Session, data []byte) {
	if data == nil || !h.sessions[sess] {
		return
	}
	select {
	case sess.send <- data:
	default:
		h.log.Warn().Str("user", sess.userID).Msg("send buffer overflow, dropping session")
		h.removeSession(sess)
	}
}

func (h *Hub) sendEvent(sess *Session, eventType string, payload any) {
	h.queue(sess, encodeEvent(eventType, payload))
}

// sendError reports a rejection to the originating session only.
func (h *Hub) sendError(sess *Session, msg string) {
	h.sendEvent(sess, EvtError, msg)
}

func (h *Hub) sendAction(sess *Session, msg string) {
	h.sendEvent(sess, EvtActionSuccess, msg)
}

func (h *Hub) broadcastRoom(roomID, eventType string, payload any) {
	data := encodeEvent(eventType, payload)
	for sess := range h.groups[roomID] {
		h.queue(sess, data)
	}
}

// broadcastAll reaches every connected session, authenticated or not.
func (h *Hub) broadcastAll(eventType string, payload any) {
	data := encodeEvent(eventType, payload)
	for sess := range h.sessions {
		h.queue(sess, data)
	}
}

func (h *Hub) joinGroup(sess *Session, roomID string) {
	h.leaveGroup(sess)
	if h.groups[roomID] == nil {
		h.groups[roomID] = make(map[*Session]bool)
	}
	h.groups[roomID][sess] = true
	sess.roomID = roomID
}

func (h *Hub) leaveGroup(sess *Session) {
	if sess.roomID == "" {
		return
	}
	if group := h.groups[sess.roomID]; group != nil {
		delete(group, sess)
		if len(group) == 0 {
			delete(h.groups, sess.roomID)
		}
	}
	sess.roomID = ""
}

// sessionsOf returns every live session bound to the user.
func (h *Hub) sessionsOf(userID string) []*Session {
	var out []*Session
	for sess := range h.sessions {
		if sess.userID == userID {
			out = append(out, sess)
		}
	}
	return out
}

// forceDisconnect delivers a final notice, then severs the connection. The
// write pump flushes queued frames before the close frame goes out.
func (h *Hub) forceDisconnect(sess *Session, eventType string, payload any) {
	h.queue(sess, encodeEvent(eventType, payload))
	h.removeSession(sess)
}

func (h *Hub) pushRoomsList() {
	h.broadcastAll(EvtRoomsList, h.store.RoomSummaries())
}

func (h *Hub) pushUsersList(roomID string) {
	room, ok := h.store.Rooms[roomID]
	if !ok {
		return
	}
	h.broadcastRoom(roomID, EvtUsersList, h.userSummaries(room))
}

func (h *Hub) userSummaries(room *domain.Room) []domain.UserSummary {
	list := make([]domain.UserSummary, 0, len(room.Users))
	for _, uid := range room.Users {
		u, ok := h.store.Users[uid]
		if !ok {
			continue
		}
		_, online := h.online[uid]
		list = append(list, domain.UserSummary{
			ID:            u.ID,
			Username:      u.Username,
			DisplayName:   u.DisplayName,
			Avatar:        u.Avatar,
			IsOnline:      online,
			IsOwner:       u.IsOwner,
			IsModerator:   room.IsModerator(uid),
			SpecialBadges: u.SpecialBadges,
		})
	}
	return list
}

// currentUser resolves the session's bound account, or nil when the
// session is unauthenticated or the account has since been deleted.
func (h *Hub) currentUser(sess *Session) *domain.User {
	if sess.userID == "" {
		return nil
	}
	return h.store.Users[sess.userID]
}
