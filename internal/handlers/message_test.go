package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/chatgptnotes/vivahgmc.com/db"
	"github.com/chatgptnotes/vivahgmc.com/internal/handlers"
	"github.com/chatgptnotes/vivahgmc.com/internal/models"
	"github.com/chatgptnotes/vivahgmc.com/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threadPath(connectionID uint) string {
	return fmt.Sprintf("/api/connections/%d/messages", connectionID)
}

func TestSendMessagePreconditions(t *testing.T) {
	env := setupTest(t)

	a, b := env.approvedPair(t)

	w := env.do(t, http.MethodPost, "/api/connections", a.token, gin.H{"to_profile_id": b.profileID})
	require.Equal(t, http.StatusCreated, w.Code)

	var connection models.ConnectionRequest
	decodeBody(t, w, &connection)

	t.Run("send against a pending connection is rejected with no row created", func(t *testing.T) {
		w := env.do(t, http.MethodPost, threadPath(connection.ID), a.token, gin.H{"content": "Hello"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var count int64
		require.NoError(t, db.DB.Model(&models.Message{}).Where("connection_id = ?", connection.ID).Count(&count).Error)
		assert.Zero(t, count, "thread must remain empty")
	})

	t.Run("thread open against a pending connection is rejected", func(t *testing.T) {
		w := env.do(t, http.MethodGet, threadPath(connection.ID), a.token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/connections/%d/respond", connection.ID), b.token, gin.H{"action": "accept"})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("non-participant cannot send", func(t *testing.T) {
		tokenC := env.register(t, "Chitra", "chitra@example.com")
		profileC := env.createProfile(t, tokenC, "Chirag")
		approveProfile(t, profileC)

		w := env.do(t, http.MethodPost, threadPath(connection.ID), tokenC, gin.H{"content": "Hello"})
		assert.Equal(t, http.StatusNotFound, w.Code)

		var count int64
		require.NoError(t, db.DB.Model(&models.Message{}).Where("connection_id = ?", connection.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("blank content rejected before any persistence", func(t *testing.T) {
		w := env.do(t, http.MethodPost, threadPath(connection.ID), a.token, gin.H{"content": "   \t  "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("oversized content rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, threadPath(connection.ID), a.token, gin.H{
			"content": strings.Repeat("x", types.MaxMessageLength+1),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestThreadOrderingAndReadReceipts(t *testing.T) {
	env := setupTest(t)

	a, b, connectionID := env.acceptedConnection(t)

	send := func(token, content string) models.Message {
		w := env.do(t, http.MethodPost, threadPath(connectionID), token, gin.H{"content": content})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var message models.Message
		decodeBody(t, w, &message)
		return message
	}

	fetch := func(token string) []models.Message {
		w := env.do(t, http.MethodGet, threadPath(connectionID), token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var messages []models.Message
		decodeBody(t, w, &messages)
		return messages
	}

	hello := send(a.token, "Hello")
	hi := send(b.token, "Hi")

	t.Run("both parties see the same chronological order", func(t *testing.T) {
		forA := fetch(a.token)
		require.Len(t, forA, 2)
		assert.Equal(t, "Hello", forA[0].Content)
		assert.Equal(t, a.profileID, forA[0].SenderProfileID)
		assert.Equal(t, "Hi", forA[1].Content)
		assert.Equal(t, b.profileID, forA[1].SenderProfileID)

		forB := fetch(b.token)
		require.Len(t, forB, 2)
		assert.Equal(t, "Hello", forB[0].Content)
		assert.Equal(t, "Hi", forB[1].Content)
	})

	t.Run("re-fetch without new inserts is idempotent", func(t *testing.T) {
		first := fetch(a.token)
		second := fetch(a.token)
		assert.Equal(t, first, second)
	})

	t.Run("open marks only the counterpart's messages read", func(t *testing.T) {
		// Fresh rows for a clean read-state check
		fromA := send(a.token, "Are you there?")
		fromB := send(b.token, "Yes")

		fetch(b.token) // B opens the thread

		var stored models.Message
		require.NoError(t, db.DB.First(&stored, fromA.ID).Error)
		assert.True(t, stored.Read, "A's message must be read after B opens the thread")

		stored = models.Message{}
		require.NoError(t, db.DB.First(&stored, fromB.ID).Error)
		assert.False(t, stored.Read, "B's own message must stay unread until A opens")

		fetch(a.token) // A opens the thread

		stored = models.Message{}
		require.NoError(t, db.DB.First(&stored, fromB.ID).Error)
		assert.True(t, stored.Read)
	})

	t.Run("hello and hi converge to read once both opened", func(t *testing.T) {
		var stored models.Message

		require.NoError(t, db.DB.First(&stored, hello.ID).Error)
		assert.True(t, stored.Read)

		stored = models.Message{}
		require.NoError(t, db.DB.First(&stored, hi.ID).Error)
		assert.True(t, stored.Read)
	})

	t.Run("sent content is trimmed", func(t *testing.T) {
		message := send(a.token, "  spaced out  ")
		assert.Equal(t, "spaced out", message.Content)
	})

	t.Run("unread count surfaces in the connection list", func(t *testing.T) {
		fetch(b.token) // clear anything outstanding

		send(a.token, "one")
		send(a.token, "two")

		w := env.do(t, http.MethodGet, "/api/connections", b.token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var listing []handlers.ConnectionSummary
		decodeBody(t, w, &listing)
		require.Len(t, listing, 1)
		assert.EqualValues(t, 2, listing[0].UnreadCount)
	})
}
