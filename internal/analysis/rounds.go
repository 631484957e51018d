package analysis

import (
	"github.com/chrisdamba/expcheck/internal/models"
)

// RoundRow is one round of the design, flattened for export.
type RoundRow struct {
	Round             int32   `json:"round" parquet:"name=round,type=INT32"`
	City              string  `json:"city" parquet:"name=city,type=BYTE_ARRAY,convertedtype=UTF8"`
	Phase             string  `json:"phase" parquet:"name=phase,type=BYTE_ARRAY,convertedtype=UTF8"`
	Orders            int32   `json:"orders" parquet:"name=orders,type=INT32"`
	Recommended       int32   `json:"recommended" parquet:"name=recommended,type=INT32"`
	Earnings          float64 `json:"earnings" parquet:"name=earnings,type=DOUBLE"`
	BaseTimeS         float64 `json:"baseTimeS" parquet:"name=baseTimeS,type=DOUBLE"`
	ScenarioType      string  `json:"scenarioType" parquet:"name=scenarioType,type=BYTE_ARRAY,convertedtype=UTF8"`
	OptimalBundleSize int32   `json:"optimalBundleSize" parquet:"name=optimalBundleSize,type=INT32"`
	OptimalRPS        float64 `json:"optimalRps" parquet:"name=optimalRps,type=DOUBLE"`
	OptimalCombo      string  `json:"optimalCombo" parquet:"name=optimalCombo,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// RoundTable builds one row per round 1..20, joining orders with the round's optimal scenario.
func RoundTable(ds *models.Dataset, suffix string) ([]RoundRow, error) {
	rows := make([]RoundRow, models.TotalRounds)
	cities := models.RoundCities(ds.Orders, suffix)
	for i := range rows {
		round := i + 1
		city, ok := cities[round]
		if !ok {
			city = models.CityUnknown
		}
		rows[i] = RoundRow{Round: int32(round), City: city, Phase: models.PhaseOf(round)}
	}

	for _, o := range ds.Orders {
		if o.Round < 1 || o.Round > models.TotalRounds {
			continue
		}
		row := &rows[o.Round-1]
		row.Orders++
		row.Earnings += o.Earnings
		row.BaseTimeS += o.BaseTimeS
		if o.Recommended {
			row.Recommended++
		}
	}

	scenarios := ds.Metadata.OptimalScenarios
	for _, key := range scenarios.Keys() {
		s, _ := scenarios.Get(key)
		round, err := s.RoundNumber(key)
		if err != nil {
			return nil, err
		}
		if round < 1 || round > models.TotalRounds {
			continue
		}
		row := &rows[round-1]
		row.ScenarioType = s.Type
		row.OptimalBundleSize = int32(s.OptimalBundleSize)
		row.OptimalRPS = s.OptimalRPS
		row.OptimalCombo = s.Combo()
	}
	return rows, nil
}
