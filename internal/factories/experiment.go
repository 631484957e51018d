package factories

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/chrisdamba/expcheck/internal/models"
	"github.com/jaswdr/faker"
)

var fake = faker.NewWithSeed(rand.NewSource(42))

var orderLetters = []string{"A", "B", "C", "D"}

// canonicalBundleSizes is the optimal bundle size of rounds 1..20.
// Overall 5/10/5, Baseline 1/3/1, Assisted 3/4/3, Transfer 1/3/1.
var canonicalBundleSizes = []int{
	1, 2, 3, 2, 2,
	2, 1, 3, 2, 1, 3, 2, 2, 1, 3,
	2, 3, 1, 2, 2,
}

var canonicalCityRPS = map[string]float64{
	models.CityEmeryville: 0.412,
	models.CityBerkeley:   0.350,
	models.CityOakland:    0.300,
	models.CityPiedmont:   0.250,
}

// Document is an experiment_orders.json document under construction. Orders
// stay as loose maps so a test can drop or corrupt any field before encoding.
type Document struct {
	Orders   []map[string]any
	Metadata *models.Metadata

	OmitOrders bool
}

// JSON encodes the document; a nil Metadata omits the key.
func (d *Document) JSON() ([]byte, error) {
	doc := make(map[string]any, 2)
	if !d.OmitOrders {
		doc["orders"] = d.Orders
	}
	if d.Metadata != nil {
		doc["metadata"] = d.Metadata
	}
	return json.Marshal(doc)
}

// Dataset encodes the document and decodes it the way the loader does.
func (d *Document) Dataset() (*models.Dataset, error) {
	data, err := d.JSON()
	if err != nil {
		return nil, err
	}
	return models.DecodeDataset(data)
}

// OrdersInRound returns the orders of round in document order.
func (d *Document) OrdersInRound(round int) []map[string]any {
	var out []map[string]any
	for _, o := range d.Orders {
		if o["round"] == round {
			out = append(out, o)
		}
	}
	return out
}

type ExperimentFactory struct{}

// CreateDocument builds the canonical 80-order design: four cities rotating
// E→B→O→P over 20 rounds, orders A and B recommended in rounds 6-15.
// Earnings per round are 5, 7, 9, 11 and base times 60, 75, 90, 105 seconds.
func (ef *ExperimentFactory) CreateDocument() *Document {
	doc := &Document{}
	for round := 1; round <= models.TotalRounds; round++ {
		for i, letter := range orderLetters {
			recommended := round >= models.FirstAssistedRound && round <= models.LastAssistedRound && i < models.RecommendedPerRound
			doc.Orders = append(doc.Orders, ef.CreateOrder(round, i, letter, recommended))
		}
	}
	md := ef.CreateMetadata()
	doc.Metadata = &md
	return doc
}

func (ef *ExperimentFactory) CreateOrder(round, index int, letter string, recommended bool) map[string]any {
	return map[string]any{
		"id":            fmt.Sprintf("r%02d_%s", round, letter),
		"round":         round,
		"city":          CityForRound(round),
		"store":         fake.Company().Name(),
		"earnings":      5 + 2*index,
		"base_time_s":   60 + 15*index,
		"aisles":        []string{fmt.Sprintf("%s%d", letter, fake.IntBetween(1, 9))},
		"travel_time_s": fake.IntBetween(10, 40),
		"recommended":   recommended,
	}
}

// CreateMetadata builds metadata consistent with CreateDocument. Scenario
// optimal_rps grows with the round (0.31 .. 0.50) so round 20 is the best one.
func (ef *ExperimentFactory) CreateMetadata() models.Metadata {
	var md models.Metadata

	for i, city := range models.Cities {
		var rounds []int
		for r := i + 1; r <= models.TotalRounds; r += len(models.Cities) {
			rounds = append(rounds, r)
		}
		md.CityStats.Set(city, models.CityStat{AvgOptimalRPS: canonicalCityRPS[city], Rounds: rounds})
	}

	md.Phases.Set("phase_a", models.Phase{Rounds: roundSpan(1, 5)})
	md.Phases.Set("phase_b", models.Phase{Rounds: roundSpan(models.FirstAssistedRound, models.LastAssistedRound), HasRecommendation: true})
	md.Phases.Set("phase_c", models.Phase{Rounds: roundSpan(16, models.TotalRounds)})

	for round := 1; round <= models.TotalRounds; round++ {
		size := canonicalBundleSizes[round-1]
		md.OptimalScenarios.Set(fmt.Sprintf("round_%d", round), ef.CreateScenario(round, size, 0.30+0.01*float64(round)))
	}

	md.TotalRounds = models.TotalRounds
	md.OrdersPerRound = models.OrdersPerRound
	md.CityRotation = append([]string(nil), models.Cities...)
	return md
}

func (ef *ExperimentFactory) CreateScenario(round, size int, rps float64) models.OptimalScenario {
	combo := make([]string, size)
	for i := range combo {
		combo[i] = fmt.Sprintf("r%02d_%s", round, orderLetters[i])
	}
	raw, _ := json.Marshal(combo)
	return models.OptimalScenario{
		Type:              ScenarioType(round, size),
		OptimalBundleSize: size,
		OptimalRPS:        rps,
		OptimalCombo:      raw,
	}
}

// ScenarioType is the alignment label a round of the design carries.
func ScenarioType(round, size int) string {
	switch models.PhaseOf(round) {
	case models.PhaseBaseline:
		return "baseline"
	case models.PhaseTransfer:
		return "transfer"
	}
	switch size {
	case 1:
		return models.AlignmentRec2Opt1
	case 3:
		return models.AlignmentRec2Opt3
	default:
		return models.AlignmentAligned
	}
}

func CityForRound(round int) string {
	return models.Cities[(round-1)%len(models.Cities)]
}

func roundSpan(first, last int) []int {
	out := make([]int, 0, last-first+1)
	for r := first; r <= last; r++ {
		out = append(out, r)
	}
	return out
}
