package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/platewatch/platewatch/internal/models"
)

// UserRepository handles user-related database operations.
//
// Every counter mutation is a single UPDATE with a SQL expression so that
// concurrent submissions against the same row cannot lose updates; debits
// additionally carry a balance guard in the WHERE clause.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. Plate and jurisdiction are normalized before
// the row is written.
func (r *UserRepository) Create(user *models.User) error {
	user.Plate = models.NormalizePlate(user.Plate)
	user.Jurisdiction = models.NormalizeJurisdiction(user.Jurisdiction)
	if user.Level == 0 {
		user.Level = 1
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user id %d: %w", id, models.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("username %s: %w", username, models.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// GetByIdentity resolves a normalized jurisdiction + plate pair to a user.
// Returns models.ErrUserNotFound when no account has that vehicle on file;
// callers treat that as a valid anonymous target, not a failure.
func (r *UserRepository) GetByIdentity(jurisdiction, plate string) (*models.User, error) {
	jurisdiction = models.NormalizeJurisdiction(jurisdiction)
	plate = models.NormalizePlate(plate)

	var user models.User
	err := r.db.
		Where("jurisdiction = ? AND plate = ?", jurisdiction, plate).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("identity %s:%s: %w", jurisdiction, plate, models.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to resolve identity %s:%s: %w", jurisdiction, plate, err)
	}
	return &user, nil
}

// List retrieves the full user roster in insertion order.
func (r *UserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// DebitCredit decrements the user's credit balance for the given polarity by
// one. The balance guard in the WHERE clause re-checks the invariant the
// validator already enforced; a stale read between the two surfaces as
// models.ErrInsufficientBalance instead of a negative balance.
func (r *UserRepository) DebitCredit(userID uint, polarity models.Polarity) error {
	column := creditColumn(polarity)

	res := r.db.Model(&models.User{}).
		Where("id = ? AND "+column+" > 0", userID).
		UpdateColumn(column, gorm.Expr(column+" - 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to debit %s credit for user %d: %w", polarity, userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", userID, models.ErrInsufficientBalance)
	}
	return nil
}

// RefundCredit adds credits of the given polarity to a user (shop purchases,
// promotional grants). Delta must be positive.
func (r *UserRepository) RefundCredit(userID uint, polarity models.Polarity, delta int) error {
	if delta <= 0 {
		return fmt.Errorf("refund delta must be positive, got %d", delta)
	}
	column := creditColumn(polarity)
	err := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("failed to credit user %d: %w", userID, err)
	}
	return nil
}

// IncrementReceived increments the target user's received-rating counter for
// the tag's polarity.
func (r *UserRepository) IncrementReceived(userID uint, polarity models.Polarity) error {
	column := "negative_received"
	if polarity == models.PolarityPositive {
		column = "positive_received"
	}
	err := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to increment %s for user %d: %w", column, userID, err)
	}
	return nil
}

// IncrementGiven increments the submitter's given-tag counters: the total and
// the per-polarity counter, in one statement.
func (r *UserRepository) IncrementGiven(userID uint, polarity models.Polarity) error {
	column := "negative_given"
	if polarity == models.PolarityPositive {
		column = "positive_given"
	}
	err := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"total_given": gorm.Expr("total_given + 1"),
			column:        gorm.Expr(column + " + 1"),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to increment given counters for user %d: %w", userID, err)
	}
	return nil
}

// AddExperience atomically adds an experience award and returns the new
// cumulative total.
func (r *UserRepository) AddExperience(userID uint, delta int) (int64, error) {
	var total int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("experience", gorm.Expr("experience + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user id %d: %w", userID, models.ErrUserNotFound)
		}
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Select("experience").
			Scan(&total).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add experience for user %d: %w", userID, err)
	}
	return total, nil
}

// UpdateLevel stores the derived level for a user.
func (r *UserRepository) UpdateLevel(userID uint, level int) error {
	err := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("level", level).Error
	if err != nil {
		return fmt.Errorf("failed to update level for user %d: %w", userID, err)
	}
	return nil
}

func creditColumn(polarity models.Polarity) string {
	if polarity == models.PolarityPositive {
		return "positive_credits"
	}
	return "negative_credits"
}
