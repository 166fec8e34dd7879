package handlers

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/temcen/tastematch/internal/services"
	"github.com/temcen/tastematch/internal/taste"
	"github.com/temcen/tastematch/pkg/models"
)

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) CheckHealth(ctx context.Context) *services.HealthStatus {
	args := m.Called(ctx)
	return args.Get(0).(*services.HealthStatus)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Profile(ctx context.Context, userID string, now time.Time) (*models.TasteProfile, error) {
	args := m.Called(ctx, userID, now)
	profile, _ := args.Get(0).(*models.TasteProfile)
	return profile, args.Error(1)
}

func (m *MockProfileService) LoadProfiles(ctx context.Context, userIDs []string, now time.Time) (map[string]*models.TasteProfile, error) {
	args := m.Called(ctx, userIDs, now)
	profiles, _ := args.Get(0).(map[string]*models.TasteProfile)
	return profiles, args.Error(1)
}

func (m *MockProfileService) Invalidate(ctx context.Context, userID string) {
	m.Called(ctx, userID)
}

func (m *MockProfileService) ClearCache(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockCandidateSource struct {
	mock.Mock
}

func (m *MockCandidateSource) EligibleUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type MockMatchHistory struct {
	mock.Mock
}

func (m *MockMatchHistory) RecentPartners(ctx context.Context, userID string, since time.Time, excludeWeekID string) (taste.UserSet, error) {
	args := m.Called(ctx, userID, since, excludeWeekID)
	set, _ := args.Get(0).(taste.UserSet)
	return set, args.Error(1)
}

func (m *MockMatchHistory) ListForUser(ctx context.Context, userID, weekID string) ([]models.MatchRecord, error) {
	args := m.Called(ctx, userID, weekID)
	records, _ := args.Get(0).([]models.MatchRecord)
	return records, args.Error(1)
}

func (m *MockMatchHistory) Get(ctx context.Context, id string) (*models.MatchRecord, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*models.MatchRecord)
	return record, args.Error(1)
}

func (m *MockMatchHistory) UpdateOutcome(ctx context.Context, id string, responded *bool, quality models.ConnectionQuality) (*models.MatchRecord, error) {
	args := m.Called(ctx, id, responded, quality)
	record, _ := args.Get(0).(*models.MatchRecord)
	return record, args.Error(1)
}

type MockLogImporter struct {
	mock.Mock
}

func (m *MockLogImporter) ImportLogs(ctx context.Context, userID string, logs []models.LogRecord) (int, error) {
	args := m.Called(ctx, userID, logs)
	return args.Int(0), args.Error(1)
}

type MockRoundStarter struct {
	mock.Mock
}

func (m *MockRoundStarter) Start(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockRoundReader struct {
	mock.Mock
}

func (m *MockRoundReader) Get(ctx context.Context, roundID string) (*services.RoundProgress, error) {
	args := m.Called(ctx, roundID)
	progress, _ := args.Get(0).(*services.RoundProgress)
	return progress, args.Error(1)
}
