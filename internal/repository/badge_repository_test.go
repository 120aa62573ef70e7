package repository

import (
	"encoding/json"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/platewatch/platewatch/internal/models"
)

// setupBadgeTestDB creates an in-memory SQLite database for testing.
func setupBadgeTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	err = db.AutoMigrate(&models.User{}, &models.Badge{}, &models.UserBadge{})
	if err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	return &DB{db}
}

// createTestBadge creates a badge catalog entry in the database.
func createTestBadge(t *testing.T, repo *BadgeRepository, name string) *models.Badge {
	t.Helper()

	badge := &models.Badge{
		Name:        name,
		Description: "Test badge",
		Icon:        "medal",
		Criteria:    json.RawMessage(`{"type":"counter","counter":"given_count","threshold":10}`),
	}
	if err := repo.Create(badge); err != nil {
		t.Fatalf("Failed to create test badge: %v", err)
	}
	return badge
}

func TestBadgeRepository_Seed(t *testing.T) {
	db := setupBadgeTestDB(t)
	repo := NewBadgeRepository(db)

	catalog := []models.Badge{
		{Name: "first_tag", Criteria: json.RawMessage(`{"type":"counter","counter":"given_count","threshold":1}`)},
		{Name: "road_reporter", Criteria: json.RawMessage(`{"type":"counter","counter":"given_count","threshold":50}`)},
	}

	if err := repo.Seed(catalog); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	// Seeding again must not duplicate rows.
	if err := repo.Seed(catalog); err != nil {
		t.Fatalf("Second Seed() failed: %v", err)
	}

	badges, err := repo.GetAll()
	if err != nil {
		t.Fatalf("GetAll() failed: %v", err)
	}
	if len(badges) != 2 {
		t.Errorf("Expected 2 badges after double seed, got %d", len(badges))
	}
}

func TestBadgeRepository_GetAllCatalogOrder(t *testing.T) {
	db := setupBadgeTestDB(t)
	repo := NewBadgeRepository(db)

	first := createTestBadge(t, repo, "first")
	second := createTestBadge(t, repo, "second")

	badges, err := repo.GetAll()
	if err != nil {
		t.Fatalf("GetAll() failed: %v", err)
	}
	if len(badges) != 2 {
		t.Fatalf("Expected 2 badges, got %d", len(badges))
	}
	if badges[0].ID != first.ID || badges[1].ID != second.ID {
		t.Error("Expected badges in id order")
	}
}

func TestBadgeRepository_AwardBadgeIdempotent(t *testing.T) {
	db := setupBadgeTestDB(t)
	repo := NewBadgeRepository(db)

	badge := createTestBadge(t, repo, "first_tag")

	if err := repo.AwardBadge(1, badge.ID); err != nil {
		t.Fatalf("AwardBadge() failed: %v", err)
	}
	// Awarding again must be a no-op, not an error.
	if err := repo.AwardBadge(1, badge.ID); err != nil {
		t.Fatalf("Second AwardBadge() failed: %v", err)
	}

	count, err := repo.GetUserBadgeCount(1)
	if err != nil {
		t.Fatalf("GetUserBadgeCount() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 award, got %d", count)
	}

	earned, err := repo.HasUserEarnedBadge(1, badge.ID)
	if err != nil {
		t.Fatalf("HasUserEarnedBadge() failed: %v", err)
	}
	if !earned {
		t.Error("Expected badge to be earned")
	}
}

func TestBadgeRepository_GetOwnedBadgeIDs(t *testing.T) {
	db := setupBadgeTestDB(t)
	repo := NewBadgeRepository(db)

	first := createTestBadge(t, repo, "first")
	second := createTestBadge(t, repo, "second")

	if err := repo.AwardBadge(1, first.ID); err != nil {
		t.Fatalf("AwardBadge() failed: %v", err)
	}

	owned, err := repo.GetOwnedBadgeIDs(1)
	if err != nil {
		t.Fatalf("GetOwnedBadgeIDs() failed: %v", err)
	}
	if !owned[first.ID] {
		t.Error("Expected first badge to be owned")
	}
	if owned[second.ID] {
		t.Error("Expected second badge to not be owned")
	}
}

func TestBadgeRepository_GetUserBadges(t *testing.T) {
	db := setupBadgeTestDB(t)
	repo := NewBadgeRepository(db)

	badge := createTestBadge(t, repo, "first_tag")
	if err := repo.AwardBadge(1, badge.ID); err != nil {
		t.Fatalf("AwardBadge() failed: %v", err)
	}

	userBadges, err := repo.GetUserBadges(1)
	if err != nil {
		t.Fatalf("GetUserBadges() failed: %v", err)
	}
	if len(userBadges) != 1 {
		t.Fatalf("Expected 1 user badge, got %d", len(userBadges))
	}
	if userBadges[0].Badge.Name != "first_tag" {
		t.Errorf("Expected badge details preloaded, got %q", userBadges[0].Badge.Name)
	}
	if userBadges[0].EarnedAt.IsZero() {
		t.Error("Expected EarnedAt to be set")
	}
}

func TestBadgeRepository_Holders(t *testing.T) {
	db := setupBadgeTestDB(t)
	repo := NewBadgeRepository(db)

	badge := createTestBadge(t, repo, "first_tag")

	for _, username := range []string{"alice", "bob"} {
		user := &models.User{Username: username}
		if err := db.Create(user).Error; err != nil {
			t.Fatalf("Failed to create user: %v", err)
		}
		if err := repo.AwardBadge(user.ID, badge.ID); err != nil {
			t.Fatalf("AwardBadge() failed: %v", err)
		}
	}

	holders, err := repo.GetUsersWithBadge(badge.ID)
	if err != nil {
		t.Fatalf("GetUsersWithBadge() failed: %v", err)
	}
	if len(holders) != 2 {
		t.Errorf("Expected 2 holders, got %d", len(holders))
	}

	count, err := repo.GetBadgeHoldersCount(badge.ID)
	if err != nil {
		t.Fatalf("GetBadgeHoldersCount() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected holder count 2, got %d", count)
	}
}
