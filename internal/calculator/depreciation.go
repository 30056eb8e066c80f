package calculator

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mmynk/flatwise/internal/models"
)

// ErrInvalidDate is returned when the valuation date precedes the purchase date.
var ErrInvalidDate = errors.New("date of depreciation cannot be before date of purchase")

const daysPerYear = 365

// Depreciate computes the value of item on asOf.
//
// Algorithm:
//   - days = whole calendar days between item.PurchaseDate and asOf
//   - raw = initial × (1 − yearly_depreciation)^(days / 365)
//   - value = max(raw, minimum_value, initial × minimum_value_pct)
//
// Both floors are optional and each is compared against the unclamped raw value.
func Depreciate(item *models.Item, asOf time.Time) (float64, error) {
	days := models.DaysBetween(item.PurchaseDate, asOf)
	if days < 0 {
		return 0, fmt.Errorf("%w: %s is before %s", ErrInvalidDate,
			models.FormatDate(models.Day(asOf)), models.FormatDate(models.Day(item.PurchaseDate)))
	}

	factor := math.Pow(1-item.YearlyDepreciation, float64(days)/daysPerYear)
	raw := item.InitialValue * factor

	value := raw
	if item.MinimumValue != nil {
		value = math.Max(value, *item.MinimumValue)
	}
	// A zero initial value has no meaningful percentage floor.
	if item.MinimumValuePct != nil && item.InitialValue > 0 {
		value = math.Max(value, item.InitialValue**item.MinimumValuePct)
	}

	return value, nil
}
