package domain_test

import (
	"fmt"
	"testing"
	"time"

	"coldroom/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomMembership(t *testing.T) {
	room := &domain.Room{ID: "room_1"}

	room.AddUser("a")
	room.AddUser("a")
	room.AddUser("b")
	assert.Equal(t, []string{"a", "b"}, room.Users, "AddUser must be idempotent")

	room.RemoveUser("a")
	assert.False(t, room.HasUser("a"))
	assert.True(t, room.HasUser("b"))

	room.RemoveUser("missing")
	assert.Len(t, room.Users, 1)
}

func TestModeratorRoster(t *testing.T) {
	room := &domain.Room{ID: "room_1"}

	room.AddModerator("m")
	room.AddModerator("m")
	assert.Equal(t, []string{"m"}, room.Moderators)
	assert.True(t, room.IsModerator("m"))

	room.RemoveModerator("m")
	assert.False(t, room.IsModerator("m"))
}

func TestHistoryEviction(t *testing.T) {
	room := &domain.Room{ID: "room_1"}

	for i := 0; i < domain.RoomHistoryCap+25; i++ {
		room.AppendMessage(domain.Message{ID: fmt.Sprintf("msg_%d", i)})
	}

	require.Len(t, room.Messages, domain.RoomHistoryCap)
	assert.Equal(t, "msg_25", room.Messages[0].ID, "oldest messages evicted first")
	assert.Equal(t, fmt.Sprintf("msg_%d", domain.RoomHistoryCap+24), room.Messages[len(room.Messages)-1].ID)
}

func TestRecentMessages(t *testing.T) {
	room := &domain.Room{ID: "room_1"}
	for i := 0; i < 10; i++ {
		room.AppendMessage(domain.Message{ID: fmt.Sprintf("msg_%d", i)})
	}

	recent := room.RecentMessages(3)
	require.Len(t, recent, 3)
	assert.Equal(t, "msg_7", recent[0].ID)

	assert.Len(t, room.RecentMessages(50), 10)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", domain.Truncate("short"))

	long := ""
	for i := 0; i < domain.MaxMessageLen+10; i++ {
		long += "é"
	}
	truncated := domain.Truncate(long)
	assert.Equal(t, domain.MaxMessageLen, len([]rune(truncated)), "truncation counts runes, not bytes")
}

func TestMuteRecordExpired(t *testing.T) {
	now := time.Now()

	perm := domain.MuteRecord{Permanent: true}
	assert.False(t, perm.Expired(now), "permanent mutes never expire")

	live := domain.MuteRecord{ExpiresAt: now.Add(time.Minute).UnixMilli()}
	assert.False(t, live.Expired(now))

	lapsed := domain.MuteRecord{ExpiresAt: now.Add(-time.Minute).UnixMilli()}
	assert.True(t, lapsed.Expired(now))
}
