package config

import "testing"

func TestEnsureDSNComposesPostgresDSN(t *testing.T) {
	cfg := DBConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "vendaops",
		Password: "secret",
		Name:     "vendaops",
		SSLMode:  "disable",
	}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN: %v", err)
	}
	want := "host=localhost port=5432 user=vendaops password=secret dbname=vendaops sslmode=disable"
	if cfg.DSN != want {
		t.Fatalf("unexpected DSN %q", cfg.DSN)
	}
}

func TestEnsureDSNRequiresConnectionDetails(t *testing.T) {
	cfg := DBConfig{}
	if err := cfg.ensureDSN(); err == nil {
		t.Fatal("expected error when no DSN or host settings provided")
	}
}

func TestEnsureDSNSQLiteDefaultsToMemory(t *testing.T) {
	cfg := DBConfig{Driver: "sqlite"}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN: %v", err)
	}
	if cfg.DSN == "" {
		t.Fatal("expected in-memory sqlite DSN")
	}
}

func TestRedisEnabled(t *testing.T) {
	if (RedisConfig{}).Enabled() {
		t.Fatal("empty redis config should be disabled")
	}
	if !(RedisConfig{Address: "localhost:6379"}).Enabled() {
		t.Fatal("address should enable redis")
	}
}
