package models

import (
	"encoding/json"
	"strings"
)

// Order is one pick task shown to a participant.
type Order struct {
	ID          string          `json:"id"`
	Round       int             `json:"round"`
	City        string          `json:"city"`
	Store       string          `json:"store"`
	Earnings    float64         `json:"earnings"`
	BaseTimeS   float64         `json:"base_time_s"`
	Aisles      json.RawMessage `json:"aisles"` // opaque to the checks, only its presence matters
	TravelTimeS float64         `json:"travel_time_s"`
	Recommended bool            `json:"recommended"`

	fields fieldSet
}

// RequiredOrderFields lists the keys every order must carry, in reporting order.
var RequiredOrderFields = []string{
	"id", "round", "city", "store", "earnings",
	"base_time_s", "aisles", "travel_time_s", "recommended",
}

// Has reports whether the decoded order carried key.
func (o Order) Has(key string) bool {
	return o.fields.has(key)
}

// IsFirstOfRound reports whether the order id marks the representative order of its round.
func (o Order) IsFirstOfRound(suffix string) bool {
	return strings.HasSuffix(o.ID, suffix)
}

func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Order(p)
	return o.fields.capture(data, RequiredOrderFields)
}

func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	base, err := json.Marshal(plain(o))
	if err != nil {
		return nil, err
	}
	return o.fields.encode(base)
}

// RoundCities maps each round to the city of its representative order.
func RoundCities(orders []Order, suffix string) map[int]string {
	cities := make(map[int]string)
	for _, o := range orders {
		if o.IsFirstOfRound(suffix) {
			cities[o.Round] = o.City
		}
	}
	return cities
}
