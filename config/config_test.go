package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `input:
  path: "stations.csv"
  delimiter: ":"
  header: true
  on_malformed: "abort"
export:
  path: "out.txt"
  format: "csv"
tree:
  max_stations: 5000
mqtt:
  broker: "tcp://localhost:1883"
  topic: "grid/lv"
  qos: 1
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: "nop"
logging:
  level: "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"input.path", cfg.Input.Path, "stations.csv"},
		{"input.delimiter", cfg.Input.Delimiter, ":"},
		{"input.header", cfg.Input.Header, true},
		{"input.on_malformed", cfg.Input.OnMalformed, "abort"},
		{"export.path", cfg.Export.Path, "out.txt"},
		{"export.format", cfg.Export.Format, "csv"},
		{"tree.max_stations", cfg.Tree.MaxStations, 5000},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.topic", cfg.MQTT.Topic, "grid/lv"},
		{"mqtt.qos", cfg.MQTT.QoS, byte(1)},
		{"metrics.prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"logging.level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "-", cfg.Input.Path)
	assert.Equal(t, ";", cfg.Input.Delimiter)
	assert.False(t, cfg.Input.Header)
	assert.Equal(t, OnMalformedSkip, cfg.Input.OnMalformed)
	assert.Equal(t, "-", cfg.Export.Path)
	assert.Equal(t, "text", cfg.Export.Format)
	assert.Equal(t, "cwire/stations", cfg.MQTT.Topic)
	assert.Zero(t, cfg.Tree.MaxStations)
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.json", `{"export": {"format": "json"}, "tree": {"max_stations": 10}}`)
	t.Setenv("CWIRE_EXPORT__PATH", "/tmp/stations.json")
	t.Setenv("CWIRE_INPUT__ON_MALFORMED", "abort")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Export.Format)
	assert.Equal(t, "/tmp/stations.json", cfg.Export.Path)
	assert.Equal(t, OnMalformedAbort, cfg.Input.OnMalformed)
	assert.Equal(t, 10, cfg.Tree.MaxStations)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"policy":  "input:\n  on_malformed: retry\n",
		"format":  "export:\n  format: xml\n",
		"bound":   "tree:\n  max_stations: -1\n",
		"loglevl": "logging:\n  level: loud\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", data))
			assert.Error(t, err)
		})
	}

	_, err := Load(writeConfig(t, "config.toml", ""))
	assert.Error(t, err)
}
