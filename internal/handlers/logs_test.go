package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/tastematch/internal/validation"
	"github.com/temcen/tastematch/pkg/models"
)

const validImport = `{"logs":[
	{"item_id":"t1","title":"Song One","artist_name":"Band","primary_genre":"rock","rating":5,"logged_at":"2026-10-10T08:00:00Z","is_public":true},
	{"item_id":"t2","title":"Song Two","artist_name":"Band","logged_at":"2026-10-11T08:00:00Z","is_public":false}
]}`

func newLogRouter(t *testing.T, userID string) (*gin.Engine, *MockLogImporter, *MockProfileService) {
	t.Helper()
	schemas, err := validation.NewDefaultSchemaValidator()
	require.NoError(t, err)

	importer := new(MockLogImporter)
	profiles := new(MockProfileService)
	router := newTestRouter(userID, models.RoleMember)
	router.POST("/users/:userId/logs", NewLogHandler(testLogger(), importer, profiles, schemas).Import)
	return router, importer, profiles
}

func TestLogHandler_Import(t *testing.T) {
	router, importer, profiles := newLogRouter(t, "alice")
	importer.On("ImportLogs", mock.Anything, "alice", mock.MatchedBy(func(logs []models.LogRecord) bool {
		return len(logs) == 2 && logs[0].UserID == "alice" && logs[1].UserID == "alice" &&
			logs[0].HasRating() && !logs[1].HasRating() && !logs[1].IsPublic
	})).Return(2, nil)
	profiles.On("Invalidate", mock.Anything, "alice").Return()

	w := perform(router, http.MethodPost, "/users/alice/logs", validImport)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.LogImportResponse
	decodeData(t, w, &resp)
	assert.Equal(t, 2, resp.Imported)
	importer.AssertExpectations(t)
	profiles.AssertExpectations(t)
}

func TestLogHandler_ImportRejectsInvalidPayload(t *testing.T) {
	router, importer, profiles := newLogRouter(t, "alice")

	w := perform(router, http.MethodPost, "/users/alice/logs",
		`{"logs":[{"item_id":"t1","title":"Song","artist_name":"Band","rating":9,"logged_at":"2026-10-10T08:00:00Z"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	assert.Contains(t, w.Body.String(), "logs.0.rating")
	importer.AssertNotCalled(t, "ImportLogs", mock.Anything, mock.Anything, mock.Anything)
	profiles.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestLogHandler_ImportForbiddenForOtherUser(t *testing.T) {
	router, importer, _ := newLogRouter(t, "bob")

	w := perform(router, http.MethodPost, "/users/alice/logs", validImport)
	assert.Equal(t, http.StatusForbidden, w.Code)
	importer.AssertNotCalled(t, "ImportLogs", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogHandler_ImportStoreFailure(t *testing.T) {
	router, importer, profiles := newLogRouter(t, "alice")
	importer.On("ImportLogs", mock.Anything, "alice", mock.Anything).Return(0, errors.New("tx aborted"))

	w := perform(router, http.MethodPost, "/users/alice/logs", validImport)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "IMPORT_FAILED", errorCode(t, w))
	profiles.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}
