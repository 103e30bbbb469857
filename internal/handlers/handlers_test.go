package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chatgptnotes/vivahgmc.com/db"
	"github.com/chatgptnotes/vivahgmc.com/internal/auth"
	"github.com/chatgptnotes/vivahgmc.com/internal/handlers"
	"github.com/chatgptnotes/vivahgmc.com/internal/models"
	"github.com/chatgptnotes/vivahgmc.com/internal/router"
	"github.com/chatgptnotes/vivahgmc.com/internal/storage"
	"github.com/chatgptnotes/vivahgmc.com/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	router   *gin.Engine
	photoDir string
}

// setupTest wires the full stack against a per-test in-memory sqlite database
// and a temp-dir photo store.
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, auth.InitJWTSecret())

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	db.DB = gdb
	require.NoError(t, db.MigrateDatabase())

	photoDir := t.TempDir()

	store, err := storage.NewLocalStore(photoDir, "http://localhost:3000")
	require.NoError(t, err)

	handlers.PhotoStore = store

	return &testEnv{
		router:   router.NewRouter(photoDir),
		photoDir: photoDir,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

// register creates an account through the API and returns its token.
func (e *testEnv) register(t *testing.T, name, email string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.Token)

	return resp.Token
}

func profileBody(childName string) gin.H {
	return gin.H{
		"user_type":        "parent",
		"child_name":       childName,
		"child_age":        28,
		"child_height":     `5'6"`,
		"child_profession": "Cardiologist",
		"child_workplace":  "City Hospital",
		"child_education":  "MD Cardiology",
		"child_location":   "Mumbai",
		"parent_name":      "Dr. Senior " + childName,
		"batch_year":       1990,
		"parent_city":      "Nagpur",
	}
}

// createProfile saves a profile for the token's account and returns its id.
func (e *testEnv) createProfile(t *testing.T, token, childName string) uint {
	t.Helper()

	w := e.do(t, http.MethodPut, "/api/profiles/me", token, profileBody(childName))
	require.Contains(t, []int{http.StatusCreated, http.StatusOK}, w.Code, w.Body.String())

	var profile models.Profile
	decodeBody(t, w, &profile)
	require.NotZero(t, profile.ID)

	return profile.ID
}

// approveProfile flips a profile to approved directly, standing in for the
// admin flow where that flow is not itself under test.
func approveProfile(t *testing.T, profileID uint) {
	t.Helper()

	err := db.DB.Model(&models.Profile{}).
		Where("id = ?", profileID).
		Update("status", types.ProfileStatusApproved).Error
	require.NoError(t, err)
}

type participant struct {
	token     string
	profileID uint
}

// approvedPair registers two accounts with approved profiles.
func (e *testEnv) approvedPair(t *testing.T) (participant, participant) {
	t.Helper()

	tokenA := e.register(t, "Asha", "asha@example.com")
	tokenB := e.register(t, "Bharat", "bharat@example.com")

	profileA := e.createProfile(t, tokenA, "Aditi")
	profileB := e.createProfile(t, tokenB, "Bhavesh")

	approveProfile(t, profileA)
	approveProfile(t, profileB)

	return participant{tokenA, profileA}, participant{tokenB, profileB}
}

// acceptedConnection builds an approved pair with an accepted connection and
// returns both participants plus the connection id.
func (e *testEnv) acceptedConnection(t *testing.T) (participant, participant, uint) {
	t.Helper()

	a, b := e.approvedPair(t)

	w := e.do(t, http.MethodPost, "/api/connections", a.token, gin.H{"to_profile_id": b.profileID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var connection models.ConnectionRequest
	decodeBody(t, w, &connection)

	w = e.do(t, http.MethodPost, fmt.Sprintf("/api/connections/%d/respond", connection.ID), b.token, gin.H{"action": "accept"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return a, b, connection.ID
}

func photoPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))

	return buf.Bytes()
}

func (e *testEnv) uploadPhoto(t *testing.T, token string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("photo", "photo.png")
	require.NoError(t, err)

	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/photos", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	return w
}
