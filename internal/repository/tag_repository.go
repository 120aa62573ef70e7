package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/platewatch/platewatch/internal/models"
)

// TagRepository handles tag event persistence. Events are append-only: there
// is no update or delete path.
type TagRepository struct {
	db *DB
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db *DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create persists a tag event. The id is the client-generated idempotency
// key: when a row with the same id already exists the insert hits the
// primary key and the call returns models.ErrDuplicateTag without writing,
// so a retried submission short-circuits instead of double-applying
// downstream effects. The constraint is the arbiter so two concurrent
// submissions with the same id cannot both land.
func (r *TagRepository) Create(tag *models.TagEvent) error {
	tag.Plate = models.NormalizePlate(tag.Plate)
	tag.Jurisdiction = models.NormalizeJurisdiction(tag.Jurisdiction)
	if err := r.db.Create(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("tag %s: %w", tag.ID, models.ErrDuplicateTag)
		}
		return fmt.Errorf("failed to create tag event: %w", err)
	}
	return nil
}

// Exists reports whether a tag event with the given id is already recorded.
func (r *TagRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.db.Model(&models.TagEvent{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check tag event %s: %w", id, err)
	}
	return count > 0, nil
}

// GetByID retrieves a single tag event.
func (r *TagRepository) GetByID(id string) (*models.TagEvent, error) {
	var tag models.TagEvent
	if err := r.db.First(&tag, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get tag event %s: %w", id, err)
	}
	return &tag, nil
}

// TagFilter narrows a tag event listing. Zero values mean "no filter".
type TagFilter struct {
	Polarity     models.Polarity
	CreatorID    uint
	Jurisdiction string
	Plate        string
	Since        time.Time
	Until        time.Time
}

// List retrieves tag events matching the filter in creation order. The
// stable ordering (created_at, then id) is what aggregation relies on for
// first-seen tie breaking.
func (r *TagRepository) List(filter TagFilter) ([]models.TagEvent, error) {
	query := r.db.Model(&models.TagEvent{})

	if filter.Polarity != "" {
		query = query.Where("polarity = ?", filter.Polarity)
	}
	if filter.CreatorID != 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.Plate != "" {
		query = query.Where(
			"jurisdiction = ? AND plate = ?",
			models.NormalizeJurisdiction(filter.Jurisdiction),
			models.NormalizePlate(filter.Plate),
		)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		query = query.Where("created_at < ?", filter.Until)
	}

	var events []models.TagEvent
	if err := query.Order("created_at ASC, id ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list tag events: %w", err)
	}
	return events, nil
}

// Count returns the number of tag events matching the filter.
func (r *TagRepository) Count(filter TagFilter) (int64, error) {
	query := r.db.Model(&models.TagEvent{})
	if filter.Polarity != "" {
		query = query.Where("polarity = ?", filter.Polarity)
	}
	if filter.CreatorID != 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tag events: %w", err)
	}
	return count, nil
}
