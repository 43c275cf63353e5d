package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
server:
  url: "http://localhost:8080"
  path: "/api/nldi"
  addr: ":8080"
database:
  host: "${TEST_DB_HOST}"
  port: 5432
  name: nldi
  username: nldi
  password: secret
log_level: info
geoprocessing:
  url: "http://localhost:5000"
  enabled: true
metadata:
  title: "NLDI"
sources:
  - source_id: 1
    suffix: nwissite
    source_name: "USGS Water Data"
    feature_id_column: identifier
    ingest_type: point
`

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return p
}

func TestLoad_ExpandsEnvAndValidates(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	path := writeTempConfig(t, sampleYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Fatalf("Database.Host = %q, want expanded env value", cfg.Database.Host)
	}
	if cfg.Database.PoolSize != 4 {
		t.Fatalf("Database.PoolSize default = %d, want 4", cfg.Database.PoolSize)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Suffix != "nwissite" {
		t.Fatalf("Sources = %+v", cfg.Sources)
	}
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("NLDI_DB_HOST", "overridden.internal")
	path := writeTempConfig(t, sampleYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Host != "overridden.internal" {
		t.Fatalf("Database.Host = %q, want env override to win", cfg.Database.Host)
	}
}

func TestLoad_RejectsMissingRequiredFields(t *testing.T) {
	path := writeTempConfig(t, `
server:
  url: "http://localhost:8080"
database:
  port: 5432
log_level: info
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing database host/name/username")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/no/such/file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
