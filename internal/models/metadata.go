package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type CityStat struct {
	AvgOptimalRPS float64 `json:"avg_optimal_rps"`
	Rounds        []int   `json:"rounds"`

	fields fieldSet
}

type Phase struct {
	Rounds            []int `json:"rounds"`
	HasRecommendation bool  `json:"has_recommendation"`

	fields fieldSet
}

// OptimalScenario is the best achievable outcome of one round.
type OptimalScenario struct {
	Type              string          `json:"type"`
	OptimalBundleSize int             `json:"optimal_bundle_size"`
	OptimalRPS        float64         `json:"optimal_rps"`
	OptimalCombo      json.RawMessage `json:"optimal_combo"`
	// Round is the structured round number. Older files only encode it in the map key.
	Round *int `json:"round,omitempty"`

	fields fieldSet
}

// Metadata is the document-level description of the experiment design.
type Metadata struct {
	CityStats        OrderedMap[CityStat]        `json:"city_stats"`
	Phases           OrderedMap[Phase]           `json:"phases"`
	OptimalScenarios OrderedMap[OptimalScenario] `json:"optimal_scenarios"`
	TotalRounds      int                         `json:"total_rounds"`
	OrdersPerRound   int                         `json:"orders_per_round"`
	CityRotation     []string                    `json:"city_rotation"`

	fields fieldSet
}

var (
	cityStatFields        = []string{"avg_optimal_rps", "rounds"}
	phaseFields           = []string{"rounds", "has_recommendation"}
	optimalScenarioFields = []string{"type", "optimal_bundle_size", "optimal_rps", "optimal_combo", "round"}
	metadataFields        = []string{"city_stats", "phases", "optimal_scenarios", "total_rounds", "orders_per_round", "city_rotation"}
)

// RoundNumber resolves the round a scenario describes. The structured round
// field wins; otherwise the integer after the first "_" of key is used ("round_7" -> 7).
func (s OptimalScenario) RoundNumber(key string) (int, error) {
	if s.Round != nil {
		return *s.Round, nil
	}
	_, rest, ok := strings.Cut(key, "_")
	if !ok {
		return 0, fmt.Errorf("scenario key %q has no round number", key)
	}
	if i := strings.IndexByte(rest, '_'); i >= 0 {
		rest = rest[:i]
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("scenario key %q: %w", key, err)
	}
	return n, nil
}

// Combo renders optimal_combo for display: strings verbatim, anything else as a bracketed list.
func (s OptimalScenario) Combo() string {
	return formatJSONValue(s.OptimalCombo)
}

func formatJSONValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return formatValue(v)
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "True"
		}
		return "False"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func (c *CityStat) UnmarshalJSON(data []byte) error {
	type plain CityStat
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = CityStat(p)
	return c.fields.capture(data, cityStatFields)
}

func (c CityStat) MarshalJSON() ([]byte, error) {
	type plain CityStat
	base, err := json.Marshal(plain(c))
	if err != nil {
		return nil, err
	}
	return c.fields.encode(base)
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	type plain Phase
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Phase(v)
	return p.fields.capture(data, phaseFields)
}

func (p Phase) MarshalJSON() ([]byte, error) {
	type plain Phase
	base, err := json.Marshal(plain(p))
	if err != nil {
		return nil, err
	}
	return p.fields.encode(base)
}

func (s *OptimalScenario) UnmarshalJSON(data []byte) error {
	type plain OptimalScenario
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = OptimalScenario(p)
	return s.fields.capture(data, optimalScenarioFields)
}

func (s OptimalScenario) MarshalJSON() ([]byte, error) {
	type plain OptimalScenario
	base, err := json.Marshal(plain(s))
	if err != nil {
		return nil, err
	}
	return s.fields.encode(base)
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	type plain Metadata
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = Metadata(p)
	return m.fields.capture(data, metadataFields)
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	type plain Metadata
	base, err := json.Marshal(plain(m))
	if err != nil {
		return nil, err
	}
	return m.fields.encode(base)
}
