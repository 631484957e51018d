package analysis

import "github.com/chrisdamba/expcheck/internal/models"

type BestRound struct {
	Round      int
	Combo      string
	RPS        float64
	BundleSize int
}

type SummaryReport struct {
	TotalRounds    int
	OrdersPerRound int
	TotalOrders    int
	CityRotation   []string
	AvgOptimalRPS  float64
	Best           BestRound
}

// Summary echoes the configuration and picks the best scenario. On equal
// rates the first scenario in document order wins.
func Summary(ds *models.Dataset) (SummaryReport, error) {
	md := ds.Metadata
	report := SummaryReport{
		TotalRounds:    md.TotalRounds,
		OrdersPerRound: md.OrdersPerRound,
		TotalOrders:    len(ds.Orders),
		CityRotation:   md.CityRotation,
	}

	keys := md.OptimalScenarios.Keys()
	if len(keys) == 0 {
		return report, ErrNoScenarios
	}

	var total float64
	bestKey := keys[0]
	best, _ := md.OptimalScenarios.Get(bestKey)
	for _, key := range keys {
		s, _ := md.OptimalScenarios.Get(key)
		total += s.OptimalRPS
		if s.OptimalRPS > best.OptimalRPS {
			best, bestKey = s, key
		}
	}
	report.AvgOptimalRPS = total / float64(len(keys))

	round, err := best.RoundNumber(bestKey)
	if err != nil {
		return report, err
	}
	report.Best = BestRound{
		Round:      round,
		Combo:      best.Combo(),
		RPS:        best.OptimalRPS,
		BundleSize: best.OptimalBundleSize,
	}
	return report, nil
}
