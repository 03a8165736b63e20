package chat

import (
	"strings"
	"testing"
	"time"

	"coldroom/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageBroadcast(t *testing.T) {
	h := newTestHub(t)
	alice, aliceSnap := registerAndLogin(t, h, "alice", "Alice")
	bob, _ := registerAndLogin(t, h, "bob", "Bob")
	drain(t, alice)
	drain(t, bob)

	command(t, h, alice, CmdSendMessage, sendMessagePayload{Text: "hello room"})

	for _, sess := range []*Session{alice, bob} {
		ev, ok := findEvent(drain(t, sess), EvtNewMessage)
		require.True(t, ok, "both members receive the broadcast")
		msg := payloadAs[domain.Message](t, ev)
		assert.Equal(t, "hello room", msg.Text)
		assert.Equal(t, aliceSnap.User.ID, msg.UserID)
		assert.Equal(t, "Alice", msg.DisplayName)
		assert.Equal(t, domain.MessageText, msg.Kind)
	}

	history := h.store.Rooms[domain.GlobalRoomID].Messages
	require.Len(t, history, 1)
	assert.NotEmpty(t, history[0].ID)
}

func TestSendMessageTruncates(t *testing.T) {
	h := newTestHub(t)
	sess, _ := registerAndLogin(t, h, "alice", "Alice")

	command(t, h, sess, CmdSendMessage, sendMessagePayload{Text: strings.Repeat("x", domain.MaxMessageLen+500)})

	ev, ok := findEvent(drain(t, sess), EvtNewMessage)
	require.True(t, ok)
	assert.Len(t, payloadAs[domain.Message](t, ev).Text, domain.MaxMessageLen)
}

func TestSendRequiresRoom(t *testing.T) {
	h := newTestHub(t)
	sess := connect(h)

	command(t, h, sess, CmdSendMessage, sendMessagePayload{Text: "void"})

	_, ok := findEvent(drain(t, sess), EvtError)
	assert.True(t, ok)
}

func TestMuteBlocksSendUntilExpiry(t *testing.T) {
	h := newTestHub(t)
	base := time.Now()
	current := base
	h.now = func() time.Time { return current }

	sess, snap := registerAndLogin(t, h, "alice", "Alice")
	owner, _ := login(t, h, ownerUsername, ownerPassword)

	command(t, h, owner, CmdMuteUser, mutePayload{UserID: snap.User.ID, Duration: 10, Reason: "spam"})
	drain(t, sess)

	command(t, h, sess, CmdSendMessage, sendMessagePayload{Text: "blocked"})
	_, isErr := findEvent(drain(t, sess), EvtError)
	assert.True(t, isErr)
	assert.Empty(t, h.store.Rooms[domain.GlobalRoomID].Messages)

	current = base.Add(11 * time.Minute)
	command(t, h, sess, CmdSendMessage, sendMessagePayload{Text: "free again"})
	_, ok := findEvent(drain(t, sess), EvtNewMessage)
	assert.True(t, ok, "expired mute no longer blocks")
	assert.NotContains(t, h.store.Muted, snap.User.ID, "lapsed mute is purged on read")
}

func TestPermanentMuteCannotBeLiftedByModerator(t *testing.T) {
	h := newTestHub(t)
	_, targetSnap := registerAndLogin(t, h, "alice", "Alice")
	mod, modSnap := registerAndLogin(t, h, "mod", "Mod")
	owner, _ := login(t, h, ownerUsername, ownerPassword)

	command(t, h, owner, CmdAddModerator, moderatorPayload{UserID: modSnap.User.ID, RoomID: domain.GlobalRoomID})
	command(t, h, owner, CmdMuteUser, mutePayload{UserID: targetSnap.User.ID, Duration: 0})
	require.True(t, h.store.Muted[targetSnap.User.ID].Permanent)

	command(t, h, mod, CmdUnmuteUser, userIDPayload{UserID: targetSnap.User.ID})
	_, isErr := findEvent(drain(t, mod), EvtError)
	assert.True(t, isErr)
	assert.Contains(t, h.store.Muted, targetSnap.User.ID)

	command(t, h, owner, CmdUnmuteUser, userIDPayload{UserID: targetSnap.User.ID})
	assert.NotContains(t, h.store.Muted, targetSnap.User.ID)
}

func TestModeratorCannotOverwriteOwnerMute(t *testing.T) {
	h := newTestHub(t)
	base := time.Now()
	current := base
	h.now = func() time.Time { return current }

	target, targetSnap := registerAndLogin(t, h, "alice", "Alice")
	mod, modSnap := registerAndLogin(t, h, "mod", "Mod")
	owner, _ := login(t, h, ownerUsername, ownerPassword)

	command(t, h, owner, CmdAddModerator, moderatorPayload{UserID: modSnap.User.ID, RoomID: domain.GlobalRoomID})
	command(t, h, owner, CmdMuteUser, mutePayload{UserID: targetSnap.User.ID, Duration: 0})
	require.True(t, h.store.Muted[targetSnap.User.ID].Permanent)

	command(t, h, mod, CmdMuteUser, mutePayload{UserID: targetSnap.User.ID, Duration: 1, RoomID: domain.GlobalRoomID})
	_, isErr := findEvent(drain(t, mod), EvtError)
	assert.True(t, isErr, "a moderator cannot replace an owner-issued mute")

	rec := h.store.Muted[targetSnap.User.ID]
	require.NotNil(t, rec)
	assert.True(t, rec.Permanent, "the permanent record survives untouched")

	// Past any temporary window the target must still be muted.
	current = base.Add(2 * time.Minute)
	drain(t, target)
	command(t, h, target, CmdSendMessage, sendMessagePayload{Text: "still muted"})
	_, isErr = findEvent(drain(t, target), EvtError)
	assert.True(t, isErr)
	assert.Empty(t, h.store.Rooms[domain.GlobalRoomID].Messages)
}

func TestModeratorMuteIsRoomScoped(t *testing.T) {
	h := newTestHub(t)
	mod, modSnap := registerAndLogin(t, h, "mod", "Mod")
	target, targetSnap := registerAndLogin(t, h, "alice", "Alice")
	owner, _ := login(t, h, ownerUsername, ownerPassword)

	roomID := createRoom(t, h, mod, createRoomPayload{Name: "Side"})
	command(t, h, owner, CmdAddModerator, moderatorPayload{UserID: modSnap.User.ID, RoomID: roomID})
	command(t, h, target, CmdJoinRoom, joinRoomPayload{RoomID: roomID})
	drain(t, target)

	// Moderators cannot mute permanently.
	command(t, h, mod, CmdMuteUser, mutePayload{UserID: targetSnap.User.ID, Duration: 0, RoomID: roomID})
	_, isErr := findEvent(drain(t, mod), EvtError)
	assert.True(t, isErr)

	command(t, h, mod, CmdMuteUser, mutePayload{UserID: targetSnap.User.ID, Duration: 10, RoomID: roomID})
	rec := h.store.Muted[targetSnap.User.ID]
	require.NotNil(t, rec)
	assert.Equal(t, roomID, rec.RoomID)
	assert.False(t, rec.ByOwner)

	command(t, h, target, CmdSendMessage, sendMessagePayload{Text: "in scoped room"})
	_, isErr = findEvent(drain(t, target), EvtError)
	assert.True(t, isErr, "muted in the scoped room")

	command(t, h, target, CmdJoinRoom, joinRoomPayload{RoomID: domain.GlobalRoomID})
	drain(t, target)
	command(t, h, target, CmdSendMessage, sendMessagePayload{Text: "elsewhere"})
	_, ok := findEvent(drain(t, target), EvtNewMessage)
	assert.True(t, ok, "room-scoped mute does not reach other rooms")
}

func TestMuteOwnerRejected(t *testing.T) {
	h := newTestHub(t)
	owner, _ := login(t, h, ownerUsername, ownerPassword)

	command(t, h, owner, CmdMuteUser, mutePayload{UserID: "owner_cold_001", Duration: 10})

	_, ok := findEvent(drain(t, owner), EvtError)
	assert.True(t, ok)
	assert.Empty(t, h.store.Muted)
}

func TestImageRequiresPermission(t *testing.T) {
	h := newTestHub(t)
	sess, snap := registerAndLogin(t, h, "alice", "Alice")
	owner, _ := login(t, h, ownerUsername, ownerPassword)

	command(t, h, sess, CmdSendImage, sendImagePayload{ImageURL: "https://cdn.example/cat.png"})
	_, isErr := findEvent(drain(t, sess), EvtError)
	assert.True(t, isErr)

	yes := true
	command(t, h, owner, CmdGrantMedia, grantMediaPayload{UserID: snap.User.ID, Images: &yes})
	command(t, h, sess, CmdSendImage, sendImagePayload{ImageURL: "https://cdn.example/cat.png"})

	ev, ok := findEvent(drain(t, sess), EvtNewMessage)
	require.True(t, ok)
	msg := payloadAs[domain.Message](t, ev)
	assert.Equal(t, domain.MessageImage, msg.Kind)
	assert.Equal(t, "https://cdn.example/cat.png", msg.ImageURL)
}

func TestEditMessageAuthorOnly(t *testing.T) {
	h := newTestHub(t)
	alice, _ := registerAndLogin(t, h, "alice", "Alice")
	bob, _ := registerAndLogin(t, h, "bob", "Bob")
	drain(t, alice)

	command(t, h, alice, CmdSendMessage, sendMessagePayload{Text: "original"})
	ev, _ := findEvent(drain(t, alice), EvtNewMessage)
	msgID := payloadAs[domain.Message](t, ev).ID
	drain(t, bob)

	command(t, h, bob, CmdEditMessage, editMessagePayload{MessageID: msgID, NewText: "hijacked"})
	_, isErr := findEvent(drain(t, bob), EvtError)
	assert.True(t, isErr, "only the author edits")

	command(t, h, alice, CmdEditMessage, editMessagePayload{MessageID: msgID, NewText: "fixed"})
	ev, ok := findEvent(drain(t, alice), EvtMessageEdited)
	require.True(t, ok)
	assert.Equal(t, "fixed", payloadAs[messageEditedPayload](t, ev).NewText)

	stored := h.store.Rooms[domain.GlobalRoomID].Messages[0]
	assert.Equal(t, "fixed", stored.Text)
	assert.True(t, stored.Edited)
}

func TestEditMessageAfterLeavingRoom(t *testing.T) {
	h := newTestHub(t)
	alice, _ := registerAndLogin(t, h, "alice", "Alice")
	witness, _ := registerAndLogin(t, h, "bob", "Bob")
	drain(t, alice)

	command(t, h, alice, CmdSendMessage, sendMessagePayload{Text: "typo"})
	ev, _ := findEvent(drain(t, alice), EvtNewMessage)
	msgID := payloadAs[domain.Message](t, ev).ID

	createRoom(t, h, alice, createRoomPayload{Name: "Side"})
	drain(t, witness)

	command(t, h, alice, CmdEditMessage, editMessagePayload{
		MessageID: msgID,
		NewText:   "fixed",
		RoomID:    domain.GlobalRoomID,
	})

	ev, ok := findEvent(drain(t, witness), EvtMessageEdited)
	require.True(t, ok, "edit lands in the message's room, not the author's current one")
	assert.Equal(t, "fixed", payloadAs[messageEditedPayload](t, ev).NewText)
	assert.Equal(t, "fixed", h.store.Rooms[domain.GlobalRoomID].Messages[0].Text)
}

func TestDeleteMessagePermissions(t *testing.T) {
	h := newTestHub(t)
	alice, _ := registerAndLogin(t, h, "alice", "Alice")
	bob, _ := registerAndLogin(t, h, "bob", "Bob")
	owner, _ := login(t, h, ownerUsername, ownerPassword)
	drain(t, alice)

	command(t, h, alice, CmdSendMessage, sendMessagePayload{Text: "target"})
	ev, _ := findEvent(drain(t, alice), EvtNewMessage)
	msgID := payloadAs[domain.Message](t, ev).ID
	drain(t, bob)

	command(t, h, bob, CmdDeleteMessage, deleteMessagePayload{MessageID: msgID})
	_, isErr := findEvent(drain(t, bob), EvtError)
	assert.True(t, isErr, "a bystander cannot delete")
	require.Len(t, h.store.Rooms[domain.GlobalRoomID].Messages, 1)

	command(t, h, owner, CmdDeleteMessage, deleteMessagePayload{MessageID: msgID, RoomID: domain.GlobalRoomID})
	assert.Empty(t, h.store.Rooms[domain.GlobalRoomID].Messages)
	_, ok := findEvent(drain(t, alice), EvtMessageDeleted)
	assert.True(t, ok)
}

func TestPrivateMessages(t *testing.T) {
	h := newTestHub(t)
	alice, aliceSnap := registerAndLogin(t, h, "alice", "Alice")
	bob, bobSnap := registerAndLogin(t, h, "bob", "Bob")
	drain(t, alice)
	drain(t, bob)

	command(t, h, alice, CmdSendPrivate, privateMessagePayload{ToUserID: bobSnap.User.ID, Text: "psst"})

	ev, ok := findEvent(drain(t, bob), EvtNewPrivate)
	require.True(t, ok, "receiver is notified live")
	pm := payloadAs[domain.PrivateMessage](t, ev)
	assert.Equal(t, "psst", pm.Text)
	assert.Equal(t, aliceSnap.User.ID, pm.From)

	_, ok = findEvent(drain(t, alice), EvtPrivateSent)
	assert.True(t, ok)

	command(t, h, bob, CmdGetPrivate, getPrivatePayload{WithUserID: aliceSnap.User.ID})
	ev, ok = findEvent(drain(t, bob), EvtPrivateList)
	require.True(t, ok)
	thread := payloadAs[privateListPayload](t, ev)
	require.Len(t, thread.Messages, 1)
	assert.Equal(t, "psst", thread.Messages[0].Text)
}
