package itinerary

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// BaseDailyCost is the per-activity amount used for placeholder day costs.
const BaseDailyCost = 50.0

var (
	// ErrVariableCost is returned for the "Varies" marker.
	ErrVariableCost = errors.New("cost varies")
	// ErrMissingCost is returned for an empty cost.
	ErrMissingCost = errors.New("cost missing")
)

var (
	amountPattern = regexp.MustCompile(`\d[\d.,]*`)
	// "30,50" and "45,00" use the comma as the decimal point
	decimalCommaPattern = regexp.MustCompile(`^\d+,\d{1,2}$`)
	groupedPattern      = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)
	plainPattern        = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// CostError reports a day whose cost text is present but not numeric.
type CostError struct {
	Day int
	Raw string
	Err error
}

func (e *CostError) Error() string {
	return fmt.Sprintf("day %d: unparseable cost %q: %v", e.Day, e.Raw, e.Err)
}

func (e *CostError) Unwrap() error { return e.Err }

// ParseCost extracts the amount from a cost string such as "$30.5",
// "~€1,200 per person", "€30,50" or "USD 80". Ranges, malformed digit groups
// and other text carrying more than one number are rejected.
func ParseCost(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrMissingCost
	}
	if strings.EqualFold(s, CostVaries) {
		return 0, ErrVariableCost
	}

	amounts := amountPattern.FindAllString(s, -1)
	switch len(amounts) {
	case 0:
		return 0, fmt.Errorf("no amount in %q", s)
	case 1:
	default:
		return 0, fmt.Errorf("ambiguous amount in %q", s)
	}

	return parseAmount(strings.TrimRight(amounts[0], ".,"))
}

func parseAmount(num string) (float64, error) {
	switch {
	case plainPattern.MatchString(num):
	case decimalCommaPattern.MatchString(num):
		num = strings.Replace(num, ",", ".", 1)
	case groupedPattern.MatchString(num):
		num = strings.ReplaceAll(num, ",", "")
	default:
		return 0, fmt.Errorf("malformed amount %q", num)
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount: %w", err)
	}
	return v, nil
}

// TotalCost sums the numeric day costs. Placeholder, "Varies" and empty costs
// are left out; other unparseable costs are left out and reported.
func TotalCost(days []Day) (float64, []error) {
	var (
		total  float64
		issues []error
	)
	for _, day := range days {
		if day.CostEstimated {
			continue
		}
		v, err := ParseCost(day.EstimatedCost)
		switch {
		case err == nil:
			total += v
		case errors.Is(err, ErrVariableCost), errors.Is(err, ErrMissingCost):
		default:
			issues = append(issues, &CostError{Day: day.DayNumber, Raw: day.EstimatedCost, Err: err})
		}
	}
	return math.Round(total*100) / 100, issues
}

// PlaceholderCost is the deterministic estimate for a day without a usable
// cost: BaseDailyCost per activity.
func PlaceholderCost(day Day, currency string) string {
	return FormatCost(BaseDailyCost*float64(day.Activities.Count()), currency)
}

// FormatCost renders amount with a currency symbol or code.
func FormatCost(amount float64, currency string) string {
	if currency == "" {
		currency = "$"
	}
	num := strconv.FormatFloat(amount, 'f', 2, 64)
	if amount == math.Trunc(amount) {
		num = strconv.FormatFloat(amount, 'f', 0, 64)
	}
	if len(currency) == 3 && strings.ToUpper(currency) == currency && isASCIILetters(currency) {
		return currency + " " + num
	}
	return currency + num
}

func isASCIILetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'A' || (c > 'Z' && c < 'a') || c > 'z' {
			return false
		}
	}
	return true
}

// applyCostDefault replaces an absent or "Varies" cost with the placeholder
// and marks it. An already marked cost is recomputed from the activities.
func applyCostDefault(day *Day, currency string) {
	cost := strings.TrimSpace(day.EstimatedCost)
	if day.CostEstimated || cost == "" || strings.EqualFold(cost, CostVaries) {
		day.EstimatedCost = PlaceholderCost(*day, currency)
		day.CostEstimated = true
	}
}
