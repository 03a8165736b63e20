package domain

import "errors"

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid-credentials")
	ErrAccountBanned      = errors.New("account-banned")
	ErrNotAuthenticated   = errors.New("not-authenticated")
)

// Validation errors.
var (
	ErrMissingFields         = errors.New("missing-fields")
	ErrInvalidUsernameFormat = errors.New("invalid-username-format")
	ErrWeakPassword          = errors.New("weak-password")
	ErrInvalidDisplayName    = errors.New("invalid-display-name")
	ErrUsernameTaken         = errors.New("username-already-exists")
	ErrDisplayNameTaken      = errors.New("display-name-already-exists")
)

// Permission errors.
var (
	ErrNoPermission = errors.New("no-permission")
	ErrMuted        = errors.New("muted")
	ErrRoomSilenced = errors.New("room-silenced")
)

// Not-found errors.
var (
	ErrUserNotFound    = errors.New("user-not-found")
	ErrRoomNotFound    = errors.New("room-not-found")
	ErrMessageNotFound = errors.New("message-not-found")
)

// State errors.
var (
	ErrWrongPassword  = errors.New("wrong-password")
	ErrRoomProtected  = errors.New("room-protected")
	ErrNoWatchSession = errors.New("no-watch-session")
)

// Token errors, kept distinct so the resume path can log suspicious tokens
// separately from merely expired ones.
var (
	ErrExpiredToken          = errors.New("expired-token")
	ErrInvalidSigningAlg     = errors.New("invalid-signing-alg")
	ErrInvalidTokenSignature = errors.New("invalid-token-signature")
	ErrCorruptedToken        = errors.New("corrupted-token")
)

// UnexpectedHashingError wraps argon2id failures that are not a simple
// mismatch.
var UnexpectedHashingError = errors.New("hashing-error")
