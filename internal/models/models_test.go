package models_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chrisdamba/expcheck/internal/models"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{
  "orders": [
    {"id": "r01_A", "round": 1, "city": "Emeryville", "store": "Safeway", "earnings": 7,
     "base_time_s": 95.5, "aisles": [{"aisle": 3, "items": 2}], "travel_time_s": 20,
     "recommended": false, "note": "kept"}
  ],
  "metadata": {
    "phases": {"z_last": {"rounds": [1], "has_recommendation": false},
               "a_first": {"rounds": [2, 3], "has_recommendation": true}},
    "optimal_scenarios": {"round_12": {"type": "aligned", "optimal_bundle_size": 2,
                                       "optimal_rps": 0.8, "optimal_combo": ["A", "B"]}},
    "city_stats": {},
    "total_rounds": 20,
    "orders_per_round": 4,
    "city_rotation": ["Emeryville", "Berkeley", "Oakland", "Piedmont"],
    "design_version": "v3"
  },
  "generated_at": "2024-05-01"
}`

func TestDatasetRoundTrip(t *testing.T) {
	ds, err := models.DecodeDataset([]byte(sampleDocument))
	require.NoError(t, err)

	out, err := json.Marshal(ds)
	require.NoError(t, err)

	assert.JSONEq(t, sampleDocument, string(out))
}

func TestOrderedMapKeepsDocumentOrder(t *testing.T) {
	ds, err := models.DecodeDataset([]byte(sampleDocument))
	require.NoError(t, err)

	assert.Equal(t, []string{"z_last", "a_first"}, ds.Metadata.Phases.Keys())

	out, err := json.Marshal(ds.Metadata.Phases)
	require.NoError(t, err)
	encoded := string(out)
	assert.Less(t, strings.Index(encoded, `"z_last"`), strings.Index(encoded, `"a_first"`))
	assert.JSONEq(t, `{"z_last":{"rounds":[1],"has_recommendation":false},"a_first":{"rounds":[2,3],"has_recommendation":true}}`, encoded)
}

func TestOrderFieldPresence(t *testing.T) {
	var o models.Order
	require.NoError(t, json.Unmarshal([]byte(`{"id": "r02_B", "round": 2}`), &o))

	assert.True(t, o.Has("id"))
	assert.True(t, o.Has("round"))
	assert.False(t, o.Has("aisles"))
	assert.False(t, o.IsFirstOfRound(models.DefaultFirstOrderSuffix))

	built := models.Order{ID: "r02_A"}
	assert.True(t, built.Has("aisles"))
	assert.True(t, built.IsFirstOfRound("_A"))
}

func TestDecodeDatasetRejectsTypeMismatch(t *testing.T) {
	_, err := models.DecodeDataset([]byte(`{"orders": [{"round": "one"}]}`))
	assert.Error(t, err)
}

func TestScenarioRoundNumber(t *testing.T) {
	tests := []struct {
		key     string
		round   *int
		want    int
		wantErr bool
	}{
		{key: "round_7", want: 7},
		{key: "round_12_alt", want: 12},
		{key: "anything", round: intPtr(9), want: 9},
		{key: "round7", wantErr: true},
		{key: "round_x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := models.OptimalScenario{Round: tt.round}.RoundNumber(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScenarioCombo(t *testing.T) {
	assert.Equal(t, "[A, B]", models.OptimalScenario{OptimalCombo: json.RawMessage(`["A","B"]`)}.Combo())
	assert.Equal(t, "A + C", models.OptimalScenario{OptimalCombo: json.RawMessage(`"A + C"`)}.Combo())
	assert.Equal(t, "[1, 2.5]", models.OptimalScenario{OptimalCombo: json.RawMessage(`[1, 2.5]`)}.Combo())
	assert.Equal(t, "", models.OptimalScenario{}.Combo())
}

func TestPhaseOf(t *testing.T) {
	assert.Equal(t, models.PhaseBaseline, models.PhaseOf(5))
	assert.Equal(t, models.PhaseAssisted, models.PhaseOf(6))
	assert.Equal(t, models.PhaseAssisted, models.PhaseOf(15))
	assert.Equal(t, models.PhaseTransfer, models.PhaseOf(20))
	assert.Equal(t, "", models.PhaseOf(21))
	assert.Len(t, models.ExpectedRotation(), 20)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataset: /data/experiment_orders.json
strict: true
export_format: parquet
kafka_broker_list: "b1:9092,b2:9092"
publish_timeout: 3s
database:
  host: db.internal
  user: expcheck
`), 0o644))

	cfg, err := models.LoadConfigFrom(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/data/experiment_orders.json", cfg.Dataset)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "parquet", cfg.ExportFormat)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.KafkaBrokerList)
	assert.Equal(t, 3*time.Second, cfg.PublishTimeout)
	assert.Equal(t, models.DefaultFirstOrderSuffix, cfg.FirstOrderSuffix)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Contains(t, cfg.Database.ConnString(), "host=db.internal")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := models.LoadConfigFrom(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "experiment_validation", cfg.KafkaTopic)
	assert.Equal(t, 10*time.Second, cfg.PublishTimeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokerList)
	assert.Equal(t, filepath.Base(models.DatasetRelPath), filepath.Base(cfg.Dataset))
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := models.LoadConfigFrom(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func intPtr(v int) *int { return &v }
