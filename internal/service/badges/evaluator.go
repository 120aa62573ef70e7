package badges

import (
	"github.com/platewatch/platewatch/internal/models"
)

// Evaluate returns the badges from the catalog that the counters newly
// satisfy: already-owned badges are skipped, output order is catalog order.
// Evaluating twice with unchanged counters yields an empty set the second
// time once the first result has been awarded.
func Evaluate(catalog []models.Badge, counters models.Counters, owned map[uint]bool) ([]models.Badge, error) {
	var newlySatisfied []models.Badge

	for _, badge := range catalog {
		if owned[badge.ID] {
			continue
		}

		criteria, err := badge.DecodeCriteria()
		if err != nil {
			return nil, err
		}

		ok, err := satisfied(criteria, counters)
		if err != nil {
			return nil, err
		}
		if ok {
			newlySatisfied = append(newlySatisfied, badge)
		}
	}

	return newlySatisfied, nil
}

// satisfied evaluates one criteria variant against a counters snapshot. The
// switch is exhaustive over the closed variant set; BadgeCriteria.Validate
// has already rejected anything else.
func satisfied(c *models.BadgeCriteria, counters models.Counters) (bool, error) {
	switch c.Type {
	case models.CriteriaCounter:
		value, err := counters.Value(c.Counter)
		if err != nil {
			return false, err
		}
		return value >= c.Threshold, nil

	case models.CriteriaBalanced:
		pos := counters.PositiveReceived
		neg := counters.NegativeReceived
		if pos < c.Threshold || neg < c.Threshold {
			return false, nil
		}
		gap := pos - neg
		if gap < 0 {
			gap = -gap
		}
		return gap <= c.Closeness, nil

	default:
		// Validate() rejects unknown types before evaluation.
		return false, nil
	}
}
