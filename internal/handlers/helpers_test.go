package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/temcen/tastematch/internal/taste"
	"github.com/temcen/tastematch/pkg/models"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// newTestRouter authenticates every request as userID with role.
func newTestRouter(userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	})
	return router
}

func perform(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, _ := json.Marshal(v)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	body := struct {
		Data interface{} `json:"data"`
	}{Data: out}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
}

func record(user, item, artist, genre string, rating int) models.LogRecord {
	r := models.LogRecord{
		UserID:       user,
		ItemID:       item,
		Title:        "Song " + item,
		ArtistName:   artist,
		PrimaryGenre: genre,
		LoggedAt:     testNow.Add(-72 * time.Hour),
		IsPublic:     true,
	}
	if rating > 0 {
		r.Rating = &rating
	}
	return r
}

// testProfiles returns alice and bob with identical histories and carol
// with nothing in common with either.
func testProfiles() map[string]*models.TasteProfile {
	shared := func(user string) []models.LogRecord {
		return []models.LogRecord{
			record(user, "i1", "Artist A", "rock", 5),
			record(user, "i2", "Artist A", "rock", 4),
			record(user, "i3", "Artist B", "pop", 2),
			record(user, "i4", "Artist C", "jazz", 1),
		}
	}
	return map[string]*models.TasteProfile{
		"alice": taste.BuildProfile("alice", shared("alice"), testNow),
		"bob":   taste.BuildProfile("bob", shared("bob"), testNow),
		"carol": taste.BuildProfile("carol", []models.LogRecord{
			record("carol", "c1", "Artist X", "metal", 3),
			record("carol", "c2", "Artist Y", "metal", 3),
			record("carol", "c3", "Artist Z", "folk", 3),
		}, testNow),
		"dave": taste.BuildProfile("dave", nil, testNow),
	}
}
