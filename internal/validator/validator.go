// Package validator checks the structural contract of the experiment dataset.
//
// Every check runs regardless of earlier failures so one pass reports every problem.
package validator

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/chrisdamba/expcheck/internal/models"
)

// Result is the verdict of Validate.
type Result struct {
	// Passed holds one line per check that held, in check order.
	Passed   []string
	Errors   []string
	Warnings []string
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Result) pass(format string, args ...any) {
	r.Passed = append(r.Passed, fmt.Sprintf(format, args...))
}

func (r *Result) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Validate runs the structural checks against ds. It never fails; every
// violation becomes an entry in Result.Errors.
func Validate(ds *models.Dataset) Result {
	var res Result

	checkTopLevel(ds, &res)

	orders := ds.Orders
	res.pass("Total orders found: %d", len(orders))
	if len(orders) != models.ExpectedOrders {
		res.fail("Expected %d orders, found %d", models.ExpectedOrders, len(orders))
	}

	checkOrderFields(orders, &res)

	// orders without a round are already reported above
	rounded := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.Has("round") {
			rounded = append(rounded, o)
		}
	}

	checkRoundSet(rounded, &res)
	checkOrdersPerRound(rounded, &res)
	checkCityRotation(rounded, &res)
	checkRecommendations(rounded, &res)

	return res
}

func checkTopLevel(ds *models.Dataset, res *Result) {
	for _, key := range []string{"orders", "metadata"} {
		if !ds.HasKey(key) {
			res.fail("Missing required key: %s", key)
		}
	}
}

func checkOrderFields(orders []models.Order, res *Result) {
	for i, o := range orders {
		for _, field := range models.RequiredOrderFields {
			if !o.Has(field) {
				res.fail("Order %d missing field: %s", i, field)
			}
		}
	}
}

func checkRoundSet(orders []models.Order, res *Result) {
	present := make(map[int]bool)
	for _, o := range orders {
		present[o.Round] = true
	}

	var missing, extra []int
	for r := 1; r <= models.TotalRounds; r++ {
		if !present[r] {
			missing = append(missing, r)
		}
	}
	for r := range present {
		if r < 1 || r > models.TotalRounds {
			extra = append(extra, r)
		}
	}
	slices.Sort(extra)

	if len(missing) == 0 && len(extra) == 0 {
		res.pass("All rounds 1-%d present", models.TotalRounds)
		return
	}
	if len(missing) > 0 {
		res.fail("Missing rounds: %s", formatInts(missing))
	}
	if len(extra) > 0 {
		res.fail("Extra rounds: %s", formatInts(extra))
	}
}

func checkOrdersPerRound(orders []models.Order, res *Result) {
	rounds, counts := countByRound(orders, func(models.Order) bool { return true })

	ok := true
	for _, r := range rounds {
		if counts[r] != models.OrdersPerRound {
			ok = false
			res.fail("Round %d has %d orders (expected %d)", r, counts[r], models.OrdersPerRound)
		}
	}
	if ok {
		res.pass("All rounds have exactly %d orders", models.OrdersPerRound)
	}
}

func checkCityRotation(orders []models.Order, res *Result) {
	var rotation []string
	for r := 1; r <= models.TotalRounds; r++ {
		for _, o := range orders {
			if o.Round == r {
				rotation = append(rotation, o.City)
				break
			}
		}
	}

	if slices.Equal(rotation, models.ExpectedRotation()) {
		res.pass("City rotation correct: E→B→O→P (%d cycles)", models.RotationCycles)
		return
	}
	res.fail("City rotation pattern incorrect")
}

func checkRecommendations(orders []models.Order, res *Result) {
	rounds, counts := countByRound(orders, func(o models.Order) bool { return o.Recommended })

	expected := true
	if len(rounds) != models.LastAssistedRound-models.FirstAssistedRound+1 {
		expected = false
	}
	for _, r := range rounds {
		if r < models.FirstAssistedRound || r > models.LastAssistedRound {
			expected = false
		}
	}
	if expected {
		res.pass("Recommendations present in rounds %d-%d", models.FirstAssistedRound, models.LastAssistedRound)
	} else {
		res.fail("Recommendations in wrong rounds")
	}

	ok := true
	for _, r := range rounds {
		if counts[r] != models.RecommendedPerRound {
			ok = false
			res.fail("Round %d has %d recommendations (expected %d)", r, counts[r], models.RecommendedPerRound)
		}
	}
	if ok {
		res.pass("Exactly %d orders recommended per round in phase B", models.RecommendedPerRound)
	}
}

// countByRound counts matching orders per round and returns the rounds in first-seen order.
func countByRound(orders []models.Order, match func(models.Order) bool) ([]int, map[int]int) {
	var rounds []int
	counts := make(map[int]int)
	for _, o := range orders {
		if !match(o) {
			continue
		}
		if _, seen := counts[o.Round]; !seen {
			rounds = append(rounds, o.Round)
		}
		counts[o.Round]++
	}
	return rounds, counts
}

// formatInts renders a sorted round list as "[1, 2, 3]".
func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
