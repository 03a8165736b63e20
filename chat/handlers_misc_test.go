package chat

import (
	"testing"

	"coldroom/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateSettingsBroadcast(t *testing.T) {
	h := newTestHub(t)
	owner, _ := login(t, h, ownerUsername, ownerPassword)
	user, _ := registerAndLogin(t, h, "alice", "Alice")
	anonymous := connect(h)
	drain(t, owner)
	drain(t, user)

	title := "Winter Palace"
	command(t, h, user, CmdUpdateSettings, settingsPayload{SiteTitle: &title})
	_, isErr := findEvent(drain(t, user), EvtError)
	assert.True(t, isErr, "only the owner changes settings")

	command(t, h, owner, CmdUpdateSettings, settingsPayload{SiteTitle: &title})

	for _, sess := range []*Session{owner, user, anonymous} {
		ev, ok := findEvent(drain(t, sess), EvtSettingsUpdated)
		require.True(t, ok, "settings reach every connection, authenticated or not")
		assert.Equal(t, "Winter Palace", payloadAs[domain.SystemSettings](t, ev).SiteTitle)
	}
	assert.Equal(t, "Winter Palace", h.store.Settings().SiteTitle)
	assert.Equal(t, "blue", h.store.Settings().BackgroundColor, "absent fields keep their value")
}

func TestTogglePartyMode(t *testing.T) {
	h := newTestHub(t)
	user, _ := registerAndLogin(t, h, "alice", "Alice")

	command(t, h, user, CmdTogglePartyMode, partyModePayload{RoomID: domain.GlobalRoomID, Enabled: true})
	_, isErr := findEvent(drain(t, user), EvtError)
	assert.True(t, isErr, "plain members cannot toggle party mode")

	owner, _ := login(t, h, ownerUsername, ownerPassword)
	command(t, h, owner, CmdTogglePartyMode, partyModePayload{RoomID: domain.GlobalRoomID, Enabled: true})

	_, ok := findEvent(drain(t, user), EvtPartyModeChanged)
	require.True(t, ok)
	assert.True(t, h.store.Settings().PartyMode[domain.GlobalRoomID])
}

func TestPartyModeByModerator(t *testing.T) {
	h := newTestHub(t)
	mod, modSnap := registerAndLogin(t, h, "mod", "Mod")
	owner, _ := login(t, h, ownerUsername, ownerPassword)
	command(t, h, owner, CmdAddModerator, moderatorPayload{UserID: modSnap.User.ID, RoomID: domain.GlobalRoomID})
	drain(t, mod)

	command(t, h, mod, CmdTogglePartyMode, partyModePayload{RoomID: domain.GlobalRoomID, Enabled: true})

	_, ok := findEvent(drain(t, mod), EvtPartyModeChanged)
	assert.True(t, ok)
}

func TestWatchTogetherLifecycle(t *testing.T) {
	h := newTestHub(t)
	owner, _ := login(t, h, ownerUsername, ownerPassword)
	viewer, _ := registerAndLogin(t, h, "alice", "Alice")
	drain(t, owner)
	drain(t, viewer)

	command(t, h, viewer, CmdStartYouTube, startYouTubePayload{VideoID: "dQw4w9WgXcQ"})
	_, isErr := findEvent(drain(t, viewer), EvtError)
	assert.True(t, isErr, "only the owner starts a watch session")

	command(t, h, owner, CmdStartYouTube, startYouTubePayload{
		VideoID: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Size:    "bogus",
	})

	ev, ok := findEvent(drain(t, viewer), EvtYouTubeStarted)
	require.True(t, ok, "watch start reaches the global room")
	ws := payloadAs[domain.WatchSession](t, ev)
	assert.Equal(t, "dQw4w9WgXcQ", ws.VideoID, "full URLs are normalized to the bare id")
	assert.Equal(t, domain.WatchMedium, ws.Size, "unknown sizes fall back to medium")
	assert.NotZero(t, ws.StartedAt)

	// A client joining later syncs from the shared start timestamp.
	late, lateSnap := registerAndLogin(t, h, "bob", "Bob")
	assert.NotNil(t, lateSnap.YouTube)
	assert.Equal(t, ws.StartedAt, lateSnap.YouTube.StartedAt)

	command(t, h, late, CmdGetYouTubeState, nil)
	ev, ok = findEvent(drain(t, late), EvtYouTubeState)
	require.True(t, ok)
	assert.Equal(t, "dQw4w9WgXcQ", payloadAs[domain.WatchSession](t, ev).VideoID)

	drain(t, viewer)
	command(t, h, owner, CmdYouTubeResize, youTubeResizePayload{Size: domain.WatchLarge})
	_, ok = findEvent(drain(t, viewer), EvtYouTubeResize)
	assert.True(t, ok)
	yt := h.store.Settings().YouTube
	require.NotNil(t, yt)
	assert.Equal(t, domain.WatchLarge, yt.Size)
	assert.Equal(t, ws.StartedAt, yt.StartedAt, "resizing never resets playback position")

	command(t, h, owner, CmdStopYouTube, nil)
	_, ok = findEvent(drain(t, viewer), EvtYouTubeStopped)
	assert.True(t, ok)
	assert.Nil(t, h.store.Settings().YouTube)
}

func TestSupportInbox(t *testing.T) {
	h := newTestHub(t)
	owner, _ := login(t, h, ownerUsername, ownerPassword)
	anonymous := connect(h)
	drain(t, owner)

	command(t, h, anonymous, CmdSendSupport, supportPayload{Message: "let me in"})
	_, ok := findEvent(drain(t, anonymous), EvtSupportSent)
	require.True(t, ok, "unauthenticated clients may file support messages")
	require.Len(t, h.store.Support, 1)

	command(t, h, anonymous, CmdGetSupport, nil)
	_, isErr := findEvent(drain(t, anonymous), EvtError)
	assert.True(t, isErr, "only the owner reads the inbox")

	command(t, h, owner, CmdGetSupport, nil)
	ev, ok := findEvent(drain(t, owner), EvtSupportList)
	require.True(t, ok)
	list := payloadAs[[]domain.SupportMessage](t, ev)
	require.Len(t, list, 1)
	assert.Equal(t, "Anonymous", list[0].From)
	assert.Equal(t, "let me in", list[0].Text)

	command(t, h, owner, CmdDeleteSupport, messageIDPayload{MessageID: list[0].ID})
	assert.Empty(t, h.store.Support)
}

func TestSupportFromAuthenticatedUser(t *testing.T) {
	h := newTestHub(t)
	sess, _ := registerAndLogin(t, h, "alice", "Alice")

	command(t, h, sess, CmdSendSupport, supportPayload{Message: "hello owner"})

	require.Len(t, h.store.Support, 1)
	for _, msg := range h.store.Support {
		assert.Equal(t, "Alice", msg.From, "sender name defaults to the bound account")
	}
}
