// Package store is the entity store: process-wide maps of users, rooms and
// moderation state, snapshotted wholesale to a single JSON file and loaded
// back at boot. All mutation is expected to come from the hub goroutine;
// the internal lock exists for the settings read path served over plain
// HTTP and for the snapshot writer.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"coldroom/domain"

	"github.com/rs/zerolog"
)

// OwnerID is the stable id of the single super-admin account created on
// first run.
const OwnerID = "owner_cold_001"

// Bootstrap credentials for the owner account, replaced by the operator
// after first login.
const (
	ownerUsername = "COLDKING"
	ownerPassword = "ColdKing@2025"
	ownerDisplay  = "Cold Room King"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type Store struct {
	Users     map[string]*domain.User
	Rooms     map[string]*domain.Room
	Muted     map[string]*domain.MuteRecord
	Banned    map[string]*domain.BanRecord
	BannedIPs map[string]bool
	// Private mirrors threads under both participants: userID -> peerID -> messages.
	Private map[string]map[string][]domain.PrivateMessage
	Support map[string]*domain.SupportMessage

	settings domain.SystemSettings

	mu   sync.RWMutex
	path string
	log  zerolog.Logger
}

// snapshot is the persisted layout. Keys are part of the data file format
// and must stay stable across releases.
type snapshot struct {
	Users           map[string]*domain.User                       `json:"users"`
	Rooms           map[string]*domain.Room                       `json:"rooms"`
	MutedUsers      map[string]*domain.MuteRecord                 `json:"mutedUsers"`
	BannedUsers     map[string]*domain.BanRecord                  `json:"bannedUsers"`
	BannedIPs       map[string]bool                               `json:"bannedIPs"`
	PrivateMessages map[string]map[string][]domain.PrivateMessage `json:"privateMessages"`
	SupportMessages map[string]*domain.SupportMessage             `json:"supportMessages"`
	SystemSettings  domain.SystemSettings                         `json:"systemSettings"`
}

func New(path string, log zerolog.Logger) *Store {
	return &Store{
		Users:     make(map[string]*domain.User),
		Rooms:     make(map[string]*domain.Room),
		Muted:     make(map[string]*domain.MuteRecord),
		Banned:    make(map[string]*domain.BanRecord),
		BannedIPs: make(map[string]bool),
		Private:   make(map[string]map[string][]domain.PrivateMessage),
		Support:   make(map[string]*domain.SupportMessage),
		settings:  domain.DefaultSettings(),
		path:      path,
		log:       log,
	}
}

// Load reads the snapshot file if it exists. A missing file is a fresh
// start, not an error.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Info().Str("file", s.path).Msg("data file not found, starting fresh")
			return nil
		}
		return err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Users != nil {
		s.Users = snap.Users
	}
	if snap.Rooms != nil {
		s.Rooms = snap.Rooms
	}
	if snap.MutedUsers != nil {
		s.Muted = snap.MutedUsers
	}
	if snap.BannedUsers != nil {
		s.Banned = snap.BannedUsers
	}
	if snap.BannedIPs != nil {
		s.BannedIPs = snap.BannedIPs
	}
	if snap.PrivateMessages != nil {
		s.Private = snap.PrivateMessages
	}
	if snap.SupportMessages != nil {
		s.Support = snap.SupportMessages
	}
	s.settings = snap.SystemSettings
	if s.settings.PartyMode == nil {
		s.settings.PartyMode = map[string]bool{}
	}

	s.log.Info().Str("file", s.path).Int("users", len(s.Users)).Int("rooms", len(s.Rooms)).Msg("data loaded")
	return nil
}

// Save rewrites the whole snapshot. The write goes to a temp file renamed
// into place, so a crash mid-write leaves the previous snapshot intact.
// In-memory state is never rolled back on failure.
func (s *Store) Save() error {
	s.mu.RLock()
	snap := snapshot{
		Users:           s.Users,
		Rooms:           s.Rooms,
		MutedUsers:      s.Muted,
		BannedUsers:     s.Banned,
		BannedIPs:       s.BannedIPs,
		PrivateMessages: s.Private,
		SupportMessages: s.Support,
		SystemSettings:  s.settings,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// EnsureDefaults creates the owner account and the official global room if
// absent.
func (s *Store) EnsureDefaults(hasher PasswordHasher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Users[OwnerID]; !ok {
		hash, err := hasher.Hash(ownerPassword)
		if err != nil {
			return err
		}
		s.Users[OwnerID] = &domain.User{
			ID:            OwnerID,
			Username:      ownerUsername,
			DisplayName:   ownerDisplay,
			PasswordHash:  hash,
			IsOwner:       true,
			Avatar:        "👑",
			Gender:        domain.GenderPrince,
			SpecialBadges: []string{"👑"},
			CanSendImages: true,
			CanSendVideos: true,
			JoinDate:      time.Now().UTC().Format(time.RFC3339),
		}
		s.Private[OwnerID] = map[string][]domain.PrivateMessage{}
		s.log.Info().Str("username", ownerUsername).Msg("owner account created")
	}

	if _, ok := s.Rooms[domain.GlobalRoomID]; !ok {
		s.Rooms[domain.GlobalRoomID] = &domain.Room{
			ID:          domain.GlobalRoomID,
			Name:        "❄️ Cold Room - Global",
			Description: "Main room for everyone",
			CreatedBy:   ownerDisplay,
			CreatorID:   OwnerID,
			Users:       []string{},
			Messages:    []domain.Message{},
			IsOfficial:  true,
			Moderators:  []string{},
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		s.log.Info().Msg("global room created")
	}
	return nil
}

// Settings returns a copy safe for concurrent readers.
func (s *Store) Settings() domain.SystemSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := s.settings
	cp.PartyMode = make(map[string]bool, len(s.settings.PartyMode))
	for k, v := range s.settings.PartyMode {
		cp.PartyMode[k] = v
	}
	if s.settings.YouTube != nil {
		yt := *s.settings.YouTube
		cp.YouTube = &yt
	}
	return cp
}

// UpdateSettings applies fn under the write lock. Settings is the only
// state read outside the hub goroutine, so only its mutations need the
// lock.
func (s *Store) UpdateSettings(fn func(*domain.SystemSettings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.settings)
}

// FindUserByUsername resolves a login handle case-insensitively.
func (s *Store) FindUserByUsername(username string) (*domain.User, bool) {
	for _, u := range s.Users {
		if strings.EqualFold(u.Username, username) {
			return u, true
		}
	}
	return nil, false
}

// UsernameTaken reports a case-insensitive username collision.
func (s *Store) UsernameTaken(username string) bool {
	_, ok := s.FindUserByUsername(username)
	return ok
}

// DisplayNameTaken reports a case-insensitive display-name collision,
// ignoring excludeID so a user may keep their own name on update.
func (s *Store) DisplayNameTaken(displayName, excludeID string) bool {
	for _, u := range s.Users {
		if u.ID != excludeID && strings.EqualFold(u.DisplayName, displayName) {
			return true
		}
	}
	return false
}

// ActiveMute returns the user's mute record, lazily purging it when a
// temporary mute has expired. A purged mute is never resurrected.
func (s *Store) ActiveMute(userID string, now time.Time) (*domain.MuteRecord, bool) {
	rec, ok := s.Muted[userID]
	if !ok {
		return nil, false
	}
	if rec.Expired(now) {
		delete(s.Muted, userID)
		return nil, false
	}
	return rec, true
}

// SweepExpiredMutes drops every lapsed temporary mute and returns how many
// were removed.
func (s *Store) SweepExpiredMutes(now time.Time) int {
	removed := 0
	for id, rec := range s.Muted {
		if rec.Expired(now) {
			delete(s.Muted, id)
			removed++
		}
	}
	return removed
}

// RoomSummaries lists rooms sorted official-first, then by descending live
// member count.
func (s *Store) RoomSummaries() []domain.RoomSummary {
	list := make([]domain.RoomSummary, 0, len(s.Rooms))
	for _, r := range s.Rooms {
		list = append(list, domain.RoomSummary{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			CreatedBy:   r.CreatedBy,
			UserCount:   len(r.Users),
			HasPassword: r.HasPassword,
			IsOfficial:  r.IsOfficial,
		})
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].IsOfficial != list[j].IsOfficial {
			return list[i].IsOfficial
		}
		return list[i].UserCount > list[j].UserCount
	})
	return list
}

// AppendPrivateMessage mirror-stores the message under both participants.
func (s *Store) AppendPrivateMessage(msg domain.PrivateMessage) {
	for _, pair := range [][2]string{{msg.From, msg.To}, {msg.To, msg.From}} {
		owner, peer := pair[0], pair[1]
		if s.Private[owner] == nil {
			s.Private[owner] = map[string][]domain.PrivateMessage{}
		}
		s.Private[owner][peer] = append(s.Private[owner][peer], msg)
	}
}

// PrivateThread returns the last domain.PrivateThreadCap messages between
// the two users as seen from userID's side.
func (s *Store) PrivateThread(userID, peerID string) []domain.PrivateMessage {
	thread := s.Private[userID][peerID]
	if len(thread) > domain.PrivateThreadCap {
		thread = thread[len(thread)-domain.PrivateThreadCap:]
	}
	return thread
}

// DeleteUserCascade removes the user and every trace of them: messages in
// all room histories, membership, moderator rosters, private threads and
// moderation records.
func (s *Store) DeleteUserCascade(userID string) {
	for _, room := range s.Rooms {
		kept := room.Messages[:0]
		for _, m := range room.Messages {
			if m.UserID != userID {
				kept = append(kept, m)
			}
		}
		room.Messages = kept
		room.RemoveUser(userID)
		room.RemoveModerator(userID)
	}

	delete(s.Users, userID)
	delete(s.Muted, userID)
	delete(s.Banned, userID)
	delete(s.Private, userID)
	for _, threads := range s.Private {
		delete(threads, userID)
	}
}
