package analysis

import "github.com/chrisdamba/expcheck/internal/models"

type Spread struct {
	Total   float64
	Average float64
	Min     float64
	Max     float64
}

type CityEarnings struct {
	City     string
	Orders   int
	Earnings float64
	// TimeTotal is the summed base time. The report still labels it "avg time".
	TimeTotal float64
}

type EarningsReport struct {
	Orders   int
	Earnings Spread
	BaseTime Spread
	ByCity   []CityEarnings
}

// TotalMinutes is the summed base time in minutes.
func (r EarningsReport) TotalMinutes() float64 {
	return r.BaseTime.Total / 60
}

// Earnings aggregates earnings and base time over all orders and per city of the rotation.
func Earnings(orders []models.Order) EarningsReport {
	report := EarningsReport{
		Orders:   len(orders),
		Earnings: spread(orders, func(o models.Order) float64 { return o.Earnings }),
		BaseTime: spread(orders, func(o models.Order) float64 { return o.BaseTimeS }),
	}

	for _, city := range models.Cities {
		ce := CityEarnings{City: city}
		for _, o := range orders {
			if o.City != city {
				continue
			}
			ce.Orders++
			ce.Earnings += o.Earnings
			ce.TimeTotal += o.BaseTimeS
		}
		report.ByCity = append(report.ByCity, ce)
	}
	return report
}

func spread(orders []models.Order, value func(models.Order) float64) Spread {
	var s Spread
	if len(orders) == 0 {
		return s
	}
	s.Min = value(orders[0])
	s.Max = s.Min
	for _, o := range orders {
		v := value(o)
		s.Total += v
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	s.Average = s.Total / float64(len(orders))
	return s
}
