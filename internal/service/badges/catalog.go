package badges

import (
	"encoding/json"
	"fmt"

	"github.com/platewatch/platewatch/internal/config"
	"github.com/platewatch/platewatch/internal/models"
)

// DefaultCatalog returns the built-in badge catalog, used when the config
// file does not define one. Every criterion kind appears at least once.
func DefaultCatalog() []models.Badge {
	return []models.Badge{
		counterBadge("first_tag", "Submitted your first tag", "🏷️", models.CounterGiven, 1),
		counterBadge("frequent_tagger", "Submitted 10 tags", "📌", models.CounterGiven, 10),
		counterBadge("road_reporter", "Submitted 50 tags", "🛣️", models.CounterGiven, 50),
		counterBadge("centurion", "Submitted 100 tags", "💯", models.CounterGiven, 100),
		counterBadge("good_samaritan", "Gave 10 positive tags", "🌟", models.CounterPositiveGiven, 10),
		counterBadge("crowd_favorite", "Received 10 positive tags", "🏆", models.CounterPositiveReceived, 10),
		counterBadge("marked_driver", "Received 10 negative tags", "⚠️", models.CounterNegativeReceived, 10),
		counterBadge("seasoned", "Earned 1000 experience points", "🎖️", models.CounterExperience, 1000),
		counterBadge("veteran", "Earned 10000 experience points", "🎗️", models.CounterExperience, 10000),
		balancedBadge("balance_keeper", "Received praise and complaints in equal measure", "⚖️", 5, 2),
	}
}

func counterBadge(name, description, icon string, counter models.CounterKind, threshold int64) models.Badge {
	criteria, _ := json.Marshal(models.BadgeCriteria{
		Type:      models.CriteriaCounter,
		Counter:   counter,
		Threshold: threshold,
	})
	return models.Badge{
		Name:        name,
		Description: description,
		Icon:        icon,
		Criteria:    criteria,
	}
}

func balancedBadge(name, description, icon string, threshold, closeness int64) models.Badge {
	criteria, _ := json.Marshal(models.BadgeCriteria{
		Type:      models.CriteriaBalanced,
		Threshold: threshold,
		Closeness: closeness,
	})
	return models.Badge{
		Name:        name,
		Description: description,
		Icon:        icon,
		Criteria:    criteria,
	}
}

// CatalogFromConfig converts configured badge entries into catalog rows,
// validating each criteria document. An empty config yields the default
// catalog.
func CatalogFromConfig(entries []config.BadgeConfig) ([]models.Badge, error) {
	if len(entries) == 0 {
		return DefaultCatalog(), nil
	}

	catalog := make([]models.Badge, 0, len(entries))
	for _, entry := range entries {
		raw, err := json.Marshal(entry.Criteria)
		if err != nil {
			return nil, fmt.Errorf("badge %q: failed to encode criteria: %w", entry.Name, err)
		}

		badge := models.Badge{
			Name:        entry.Name,
			Description: entry.Description,
			Icon:        entry.Icon,
			Criteria:    raw,
		}
		if _, err := badge.DecodeCriteria(); err != nil {
			return nil, err
		}
		catalog = append(catalog, badge)
	}
	return catalog, nil
}
