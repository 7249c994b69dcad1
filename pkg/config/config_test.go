package config

import "testing"

func validConfig() *Config {
	var c Config
	c.Kafka.TradesTopic = "polywatch.trades"
	c.Kafka.AlertsTopic = "polywatch.alerts"
	c.ClickHouse.Host = "localhost"
	return &c
}

func TestValidateIngestBackendDefault(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.Ingest.Backend != "kafka" {
		t.Fatalf("expected kafka default, got %q", c.Ingest.Backend)
	}
}

func TestValidateIngestBackendClickHouse(t *testing.T) {
	c := validConfig()
	c.Ingest.Backend = "clickhouse"
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.Ingest.Backend != "clickhouse" {
		t.Fatalf("backend changed to %q", c.Ingest.Backend)
	}
}

func TestValidateIngestBackendUnknown(t *testing.T) {
	c := validConfig()
	c.Ingest.Backend = "rabbitmq"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestValidateThresholdOrdering(t *testing.T) {
	c := validConfig()
	c.Detection.CriticalThreshold = 0.5
	c.Detection.HighThreshold = 0.8
	if err := c.Validate(); err == nil {
		t.Fatal("expected error when critical < high")
	}
}
