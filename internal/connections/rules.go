// Package connections holds the pure rules of the connection state machine
// and message threads: who may transition a request, who counts as a
// participant, and what makes a message sendable. Handlers fetch rows and
// defer every decision here.
package connections

import (
	"errors"
	"strings"

	"github.com/chatgptnotes/vivahgmc.com/internal/models"
	"github.com/chatgptnotes/vivahgmc.com/internal/types"
)

var (
	ErrSelfConnection  = errors.New("cannot send a connection request to your own profile")
	ErrNotParticipant  = errors.New("profile is not a participant of this connection")
	ErrNotRecipient    = errors.New("only the recipient can respond to a connection request")
	ErrAlreadyResolved = errors.New("connection request has already been resolved")
	ErrNotAccepted     = errors.New("connection is not accepted")
	ErrEmptyMessage    = errors.New("message content cannot be empty")
	ErrMessageTooLong  = errors.New("message content is too long")
	ErrInvalidAction   = errors.New("action must be accept or decline")
)

func IsParticipant(conn models.ConnectionRequest, profileID uint) bool {
	return conn.FromProfileID == profileID || conn.ToProfileID == profileID
}

// CounterpartID resolves the other participant. The second return is false
// when profileID is not part of the connection at all.
func CounterpartID(conn models.ConnectionRequest, profileID uint) (uint, bool) {
	switch profileID {
	case conn.FromProfileID:
		return conn.ToProfileID, true
	case conn.ToProfileID:
		return conn.FromProfileID, true
	default:
		return 0, false
	}
}

// ValidateNewRequest checks the requester side of a new connection request.
// Duplicate-pair detection needs a query and stays in the handler.
func ValidateNewRequest(fromProfileID, toProfileID uint) error {
	if fromProfileID == toProfileID {
		return ErrSelfConnection
	}
	return nil
}

// CanRespond reports whether responderProfileID may fire a transition on conn.
// Only the recipient has transition authority, and only while pending.
func CanRespond(conn models.ConnectionRequest, responderProfileID uint) error {
	if !IsParticipant(conn, responderProfileID) {
		return ErrNotParticipant
	}
	if conn.ToProfileID != responderProfileID {
		return ErrNotRecipient
	}
	if conn.Status != types.ConnectionStatusPending {
		return ErrAlreadyResolved
	}
	return nil
}

// NextStatus maps a respond action to the terminal status it produces.
func NextStatus(action string) (string, error) {
	switch action {
	case "accept":
		return types.ConnectionStatusAccepted, nil
	case "decline":
		return types.ConnectionStatusDeclined, nil
	default:
		return "", ErrInvalidAction
	}
}

// CanOpenThread gates thread reads: participant only, accepted only.
func CanOpenThread(conn models.ConnectionRequest, profileID uint) error {
	if !IsParticipant(conn, profileID) {
		return ErrNotParticipant
	}
	if conn.Status != types.ConnectionStatusAccepted {
		return ErrNotAccepted
	}
	return nil
}

// ValidateSend checks a message before any persistence call and returns the
// trimmed content to insert.
func ValidateSend(conn models.ConnectionRequest, senderProfileID uint, content string) (string, error) {
	if err := CanOpenThread(conn, senderProfileID); err != nil {
		return "", err
	}

	trimmed := strings.TrimSpace(content)

	if trimmed == "" {
		return "", ErrEmptyMessage
	}

	if len(trimmed) > types.MaxMessageLength {
		return "", ErrMessageTooLong
	}

	return trimmed, nil
}
