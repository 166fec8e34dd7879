package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/temcen/tastematch/internal/taste"
	"github.com/temcen/tastematch/pkg/models"
)

func newProfileRouter(profiles *MockProfileService) *gin.Engine {
	handler := NewProfileHandler(testLogger(), profiles, taste.DefaultEngine(), nil)
	handler.now = func() time.Time { return testNow }

	router := newTestRouter("alice", models.RoleMember)
	router.GET("/profiles/:userId", handler.Get)
	router.GET("/similarity/:userId/:otherUserId", handler.Similarity)
	return router
}

func TestProfileHandler_Get(t *testing.T) {
	profiles := new(MockProfileService)
	profiles.On("Profile", mock.Anything, "alice", testNow).Return(testProfiles()["alice"], nil)

	w := perform(newProfileRouter(profiles), http.MethodGet, "/profiles/alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Profile    models.TasteProfile `json:"profile"`
		Eligible   bool                `json:"eligible"`
		RecentLogs int                 `json:"recent_logs"`
	}
	decodeData(t, w, &data)
	assert.True(t, data.Eligible)
	assert.Equal(t, "alice", data.Profile.UserID)
	assert.Equal(t, 4, data.Profile.TotalLogs)
	assert.Equal(t, []string{"Artist A", "Artist B", "Artist C"}, data.Profile.TopArtists)
	assert.Empty(t, data.Profile.Logs)
	assert.Empty(t, data.Profile.RecentActivity)
	assert.Equal(t, 4, data.RecentLogs)
	assert.NotContains(t, w.Body.String(), "Song i1")
	profiles.AssertExpectations(t)
}

func TestProfileHandler_GetOtherUser(t *testing.T) {
	t.Run("member is forbidden", func(t *testing.T) {
		profiles := new(MockProfileService)

		w := perform(newProfileRouter(profiles), http.MethodGet, "/profiles/carol", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", errorCode(t, w))
		profiles.AssertNotCalled(t, "Profile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin may read", func(t *testing.T) {
		profiles := new(MockProfileService)
		profiles.On("Profile", mock.Anything, "carol", testNow).Return(testProfiles()["carol"], nil)

		handler := NewProfileHandler(testLogger(), profiles, taste.DefaultEngine(), nil)
		handler.now = func() time.Time { return testNow }
		router := newTestRouter("root", models.RoleAdmin)
		router.GET("/profiles/:userId", handler.Get)

		w := perform(router, http.MethodGet, "/profiles/carol", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		profiles.AssertExpectations(t)
	})
}

func TestProfileHandler_GetFailure(t *testing.T) {
	profiles := new(MockProfileService)
	profiles.On("Profile", mock.Anything, "alice", testNow).Return(nil, errors.New("db down"))

	w := perform(newProfileRouter(profiles), http.MethodGet, "/profiles/alice", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "PROFILE_FAILED", errorCode(t, w))
}

func TestProfileHandler_Similarity(t *testing.T) {
	all := testProfiles()

	t.Run("same user", func(t *testing.T) {
		w := perform(newProfileRouter(new(MockProfileService)), http.MethodGet, "/similarity/alice/alice", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "SAME_USER", errorCode(t, w))
	})

	t.Run("member comparing other users", func(t *testing.T) {
		profiles := new(MockProfileService)

		w := perform(newProfileRouter(profiles), http.MethodGet, "/similarity/bob/carol", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", errorCode(t, w))
		profiles.AssertNotCalled(t, "LoadProfiles", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ineligible user", func(t *testing.T) {
		profiles := new(MockProfileService)
		profiles.On("LoadProfiles", mock.Anything, []string{"alice", "dave"}, testNow).
			Return(map[string]*models.TasteProfile{"alice": all["alice"], "dave": all["dave"]}, nil)

		w := perform(newProfileRouter(profiles), http.MethodGet, "/similarity/alice/dave", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "INSUFFICIENT_DATA", errorCode(t, w))
	})

	t.Run("identical tastes", func(t *testing.T) {
		profiles := new(MockProfileService)
		profiles.On("LoadProfiles", mock.Anything, []string{"alice", "bob"}, testNow).
			Return(map[string]*models.TasteProfile{"alice": all["alice"], "bob": all["bob"]}, nil)

		w := perform(newProfileRouter(profiles), http.MethodGet, "/similarity/alice/bob", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var result models.SimilarityResult
		decodeData(t, w, &result)
		assert.Equal(t, "alice", result.UserAID)
		assert.Equal(t, "bob", result.UserBID)
		assert.InDelta(t, 1.0, result.ArtistSimilarity, 1e-9)
		assert.InDelta(t, 1.0, result.GenreSimilarity, 1e-9)
		assert.InDelta(t, 1.0, result.RatingCorrelation, 1e-9)
		assert.InDelta(t, 0.93, result.OverallScore, 1e-9)
		profiles.AssertExpectations(t)
	})
}
