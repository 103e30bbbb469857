package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/chatgptnotes/vivahgmc.com/db"
	"github.com/chatgptnotes/vivahgmc.com/internal/handlers"
	"github.com/chatgptnotes/vivahgmc.com/internal/models"
	"github.com/chatgptnotes/vivahgmc.com/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminReview(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", "warden@example.com")

	env := setupTest(t)

	adminToken := env.register(t, "Warden", "warden@example.com")

	tokenA := env.register(t, "Asha", "asha@example.com")
	profileA := env.createProfile(t, tokenA, "Aditi")

	tokenB := env.register(t, "Bharat", "bharat@example.com")
	profileB := env.createProfile(t, tokenB, "Bhavesh")

	t.Run("non-admin is rejected", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/admin/dashboard", tokenA, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("pending list shows unreviewed profiles oldest first", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/admin/profiles/pending", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var pending []models.Profile
		decodeBody(t, w, &pending)
		require.Len(t, pending, 2)
		assert.Equal(t, profileA, pending[0].ID)
		assert.Equal(t, profileB, pending[1].ID)
	})

	t.Run("approve moves the profile into listings", func(t *testing.T) {
		w := env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/profiles/%d/approve", profileA), adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var stored models.Profile
		require.NoError(t, db.DB.First(&stored, profileA).Error)
		assert.Equal(t, types.ProfileStatusApproved, stored.Status)

		w = env.do(t, http.MethodGet, "/api/admin/profiles/pending", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var pending []models.Profile
		decodeBody(t, w, &pending)
		require.Len(t, pending, 1)
		assert.Equal(t, profileB, pending[0].ID)
	})

	t.Run("second review of the same profile conflicts", func(t *testing.T) {
		w := env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/profiles/%d/approve", profileA), adminToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		w := env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/profiles/%d/reject", profileB), adminToken, gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reject records the reason", func(t *testing.T) {
		w := env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/profiles/%d/reject", profileB), adminToken, gin.H{
			"reason": "photos unclear",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var stored models.Profile
		require.NoError(t, db.DB.First(&stored, profileB).Error)
		assert.Equal(t, types.ProfileStatusRejected, stored.Status)
		assert.Equal(t, "photos unclear", stored.RejectionReason)
	})

	t.Run("review of a missing profile is a not-found", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/admin/profiles/9999/approve", adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminDashboard(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", "warden@example.com")

	env := setupTest(t)

	adminToken := env.register(t, "Warden", "warden@example.com")

	env.acceptedConnection(t)

	tokenC := env.register(t, "Chitra", "chitra@example.com")
	env.createProfile(t, tokenC, "Chirag")

	w := env.do(t, http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats handlers.AdminDashboardResponse
	decodeBody(t, w, &stats)

	assert.EqualValues(t, 3, stats.TotalProfiles)
	assert.EqualValues(t, 1, stats.PendingApprovals)
	assert.EqualValues(t, 2, stats.ApprovedProfiles)
	assert.EqualValues(t, 0, stats.RejectedProfiles)
	assert.EqualValues(t, 1, stats.TotalConnections)
}
