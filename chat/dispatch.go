package chat

import "encoding/json"

// dispatch routes one inbound command. A panicking handler must never take
// the process down or poison other connections, so faults are swallowed
// and logged here.
func (h *Hub) dispatch(sess *Session, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Str("type", ev.Type).Interface("panic", r).Msg("handler fault")
			h.sendError(sess, "internal error")
		}
	}()

	switch ev.Type {
	case CmdLogin:
		h.handleLogin(sess, decode[loginPayload](ev))
	case CmdRegister:
		h.handleRegister(sess, decode[registerPayload](ev))
	case CmdResume:
		h.handleResume(sess, decode[resumePayload](ev))
	case CmdSendMessage:
		h.handleSendMessage(sess, decode[sendMessagePayload](ev))
	case CmdEditMessage:
		h.handleEditMessage(sess, decode[editMessagePayload](ev))
	case CmdSendImage:
		h.handleSendImage(sess, decode[sendImagePayload](ev))
	case CmdSendVideo:
		h.handleSendVideo(sess, decode[sendVideoPayload](ev))
	case CmdDeleteMessage:
		h.handleDeleteMessage(sess, decode[deleteMessagePayload](ev))
	case CmdCreateRoom:
		h.handleCreateRoom(sess, decode[createRoomPayload](ev))
	case CmdJoinRoom:
		h.handleJoinRoom(sess, decode[joinRoomPayload](ev))
	case CmdUpdateRoom:
		h.handleUpdateRoom(sess, decode[updateRoomPayload](ev))
	case CmdDeleteRoom:
		h.handleDeleteRoom(sess, decode[roomIDPayload](ev))
	case CmdSilenceRoom:
		h.handleSilenceRoom(sess, decode[roomIDPayload](ev), true)
	case CmdUnsilenceRoom:
		h.handleSilenceRoom(sess, decode[roomIDPayload](ev), false)
	case CmdCleanChat:
		h.handleCleanChat(sess, decode[roomIDPayload](ev))
	case CmdCleanAllRooms:
		h.handleCleanAllRooms(sess)
	case CmdMuteUser:
		h.handleMuteUser(sess, decode[mutePayload](ev))
	case CmdUnmuteUser:
		h.handleUnmuteUser(sess, decode[userIDPayload](ev))
	case CmdUnmuteMultiple:
		h.handleUnmuteMultiple(sess, decode[userIDsPayload](ev))
	case CmdBanUser:
		h.handleBanUser(sess, decode[banPayload](ev))
	case CmdUnbanUser:
		h.handleUnbanUser(sess, decode[userIDPayload](ev))
	case CmdUnbanMultiple:
		h.handleUnbanMultiple(sess, decode[userIDsPayload](ev))
	case CmdAddModerator:
		h.handleModerator(sess, decode[moderatorPayload](ev), true)
	case CmdRemoveModerator:
		h.handleModerator(sess, decode[moderatorPayload](ev), false)
	case CmdChangeDisplayName:
		h.handleChangeDisplayName(sess, decode[displayNamePayload](ev))
	case CmdGrantMedia:
		h.handleGrantMedia(sess, decode[grantMediaPayload](ev))
	case CmdDeleteAccount:
		h.handleDeleteAccount(sess, decode[userIDPayload](ev))
	case CmdSendPrivate:
		h.handleSendPrivate(sess, decode[privateMessagePayload](ev))
	case CmdGetPrivate:
		h.handleGetPrivate(sess, decode[getPrivatePayload](ev))
	case CmdSendSupport:
		h.handleSendSupport(sess, decode[supportPayload](ev))
	case CmdGetSupport:
		h.handleGetSupport(sess)
	case CmdDeleteSupport:
		h.handleDeleteSupport(sess, decode[messageIDPayload](ev))
	case CmdUpdateSettings:
		h.handleUpdateSettings(sess, decode[settingsPayload](ev))
	case CmdTogglePartyMode:
		h.handleTogglePartyMode(sess, decode[partyModePayload](ev))
	case CmdStartYouTube:
		h.handleStartYouTube(sess, decode[startYouTubePayload](ev))
	case CmdStopYouTube:
		h.handleStopYouTube(sess)
	case CmdYouTubeResize:
		h.handleYouTubeResize(sess, decode[youTubeResizePayload](ev))
	case CmdGetYouTubeState:
		h.handleGetYouTubeState(sess)
	case CmdGetRooms:
		h.sendEvent(sess, EvtRoomsList, h.store.RoomSummaries())
	case CmdGetUsers:
		h.handleGetUsers(sess, decode[roomIDPayload](ev))
	case CmdGetMutedList:
		h.handleGetMutedList(sess)
	case CmdGetBannedList:
		h.handleGetBannedList(sess)
	case CmdPing:
		h.handlePing(sess)
	default:
		h.log.Debug().Str("type", ev.Type).Msg("unknown command")
	}
}

// decode unmarshals a command payload, tolerating absent or malformed
// payloads: handlers see zero values and reject on their own validation.
func decode[T any](ev Event) T {
	var payload T
	if len(ev.Payload) > 0 {
		_ = json.Unmarshal(ev.Payload, &payload)
	}
	return payload
}
