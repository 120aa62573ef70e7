package badges

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewatch/platewatch/internal/models"
	"github.com/platewatch/platewatch/pkg/logger"
)

// Mock repositories for testing

type mockBadgeRepository struct {
	catalog    []models.Badge
	userBadges map[uint]map[uint]bool // userID -> badgeID -> held
}

func newMockBadgeRepository(catalog []models.Badge) *mockBadgeRepository {
	return &mockBadgeRepository{
		catalog:    catalog,
		userBadges: make(map[uint]map[uint]bool),
	}
}

func (m *mockBadgeRepository) GetAll() ([]models.Badge, error) {
	return m.catalog, nil
}

func (m *mockBadgeRepository) GetByID(id uint) (*models.Badge, error) {
	for i := range m.catalog {
		if m.catalog[i].ID == id {
			return &m.catalog[i], nil
		}
	}
	return nil, nil
}

func (m *mockBadgeRepository) GetOwnedBadgeIDs(userID uint) (map[uint]bool, error) {
	owned := make(map[uint]bool)
	for badgeID, held := range m.userBadges[userID] {
		if held {
			owned[badgeID] = true
		}
	}
	return owned, nil
}

func (m *mockBadgeRepository) AwardBadge(userID, badgeID uint) error {
	if m.userBadges[userID] == nil {
		m.userBadges[userID] = make(map[uint]bool)
	}
	m.userBadges[userID][badgeID] = true
	return nil
}

func (m *mockBadgeRepository) GetUserBadges(userID uint) ([]models.UserBadge, error) {
	var result []models.UserBadge
	for badgeID, held := range m.userBadges[userID] {
		if held {
			result = append(result, models.UserBadge{
				UserID:   userID,
				BadgeID:  badgeID,
				EarnedAt: time.Now(),
			})
		}
	}
	return result, nil
}

func (m *mockBadgeRepository) GetUsersWithBadge(badgeID uint) ([]models.User, error) {
	var users []models.User
	for userID, badges := range m.userBadges {
		if badges[badgeID] {
			users = append(users, models.User{ID: userID})
		}
	}
	return users, nil
}

func (m *mockBadgeRepository) GetBadgeHoldersCount(badgeID uint) (int64, error) {
	count := int64(0)
	for _, badges := range m.userBadges {
		if badges[badgeID] {
			count++
		}
	}
	return count, nil
}

type mockUserRepository struct {
	users map[uint]*models.User
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: make(map[uint]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepository) List() ([]models.User, error) {
	var users []models.User
	for id := uint(1); id <= uint(len(m.users)); id++ {
		if u, ok := m.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (m *mockUserRepository) GetByID(id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, models.ErrUserNotFound
}

func newTestService(t *testing.T, users ...*models.User) (*Service, *mockBadgeRepository) {
	t.Helper()

	catalog := testCatalog(t)
	badgeRepo := newMockBadgeRepository(catalog)
	return NewServiceWithInterfaces(badgeRepo, newMockUserRepository(users...), logger.Nop()), badgeRepo
}

func TestEvaluateCounters_AwardsNewBadges(t *testing.T) {
	svc, repo := newTestService(t)

	awarded, err := svc.EvaluateCounters(context.Background(), 1, models.Counters{TotalGiven: 1})
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, "first_tag", awarded[0].Name)

	held, err := repo.GetOwnedBadgeIDs(1)
	require.NoError(t, err)
	assert.True(t, held[awarded[0].ID])
}

func TestEvaluateCounters_SecondPassAwardsNothing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	counters := models.Counters{TotalGiven: 10, Experience: 1500}

	first, err := svc.EvaluateCounters(ctx, 1, counters)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := svc.EvaluateCounters(ctx, 1, counters)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestEvaluateUser_UsesStoredCounters(t *testing.T) {
	user := &models.User{ID: 7, Username: "driver", TotalGiven: 12}
	svc, _ := newTestService(t, user)

	awarded, err := svc.EvaluateUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_tag", "frequent_tagger"}, badgeNames(awarded))
}

func TestEvaluateAll_SweepsRoster(t *testing.T) {
	users := []*models.User{
		{ID: 1, Username: "a", TotalGiven: 1},
		{ID: 2, Username: "b", TotalGiven: 10},
		{ID: 3, Username: "c"}, // nothing earned
	}
	svc, _ := newTestService(t, users...)

	count, err := svc.EvaluateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count) // a: first_tag; b: first_tag + frequent_tagger

	// A second sweep with unchanged counters awards nothing.
	count, err = svc.EvaluateAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
