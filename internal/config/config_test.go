package config

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func clearSQLEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvServerHost, EnvServerPort, EnvServerDatabase, EnvServerUser,
		EnvServerPassword, EnvEncrypt, EnvTrustServerCert,
		EnvConnectionTimeout, EnvEnforceReadonly, EnvMaxQueryChars,
		EnvMaxRows, EnvQueryTimeout,
	} {
		t.Setenv(name, "")
	}
}

func TestApplyEnv_overrides(t *testing.T) {
	clearSQLEnv(t)
	t.Setenv(EnvServerHost, "db.example.local")
	t.Setenv(EnvServerPort, "1434")
	t.Setenv(EnvServerDatabase, "reporting")
	t.Setenv(EnvEnforceReadonly, "false")
	t.Setenv(EnvMaxRows, "50")

	s := defaults()
	s.applyEnv()

	if s.Server != "db.example.local" {
		t.Errorf("Server = %q", s.Server)
	}
	if s.Port != "1434" {
		t.Errorf("Port = %q", s.Port)
	}
	if s.Database != "reporting" {
		t.Errorf("Database = %q", s.Database)
	}
	if s.EnforceReadonly {
		t.Error("EnforceReadonly should be overridden to false")
	}
	if s.MaxRows != 50 {
		t.Errorf("MaxRows = %d, want 50", s.MaxRows)
	}
}

func TestApplyEnv_keepsDefaultsWhenUnset(t *testing.T) {
	clearSQLEnv(t)

	s := defaults()
	s.applyEnv()

	if s.Database != DefaultDatabase {
		t.Errorf("Database = %q, want %q", s.Database, DefaultDatabase)
	}
	if !s.Encrypt || !s.TrustServerCertificate || !s.EnforceReadonly {
		t.Errorf("boolean defaults lost: %+v", s)
	}
	if s.MaxRows != DefaultMaxRows || s.QueryTimeout != DefaultQueryTimeout {
		t.Errorf("int defaults lost: %+v", s)
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"1", false, true},
		{"true", false, true},
		{"YES", false, true},
		{"y", false, true},
		{"on", false, true},
		{"0", true, false},
		{"false", true, false},
		{"nonsense", true, false},
	}
	for _, tt := range tests {
		t.Setenv("MSSQL_MCP_TEST_BOOL", tt.value)
		if got := envBool("MSSQL_MCP_TEST_BOOL", tt.fallback); got != tt.want {
			t.Errorf("envBool(%q, %v) = %v, want %v", tt.value, tt.fallback, got, tt.want)
		}
	}
}

func TestEnvInt_unparseableFallsBack(t *testing.T) {
	t.Setenv("MSSQL_MCP_TEST_INT", "not-a-number")
	if got := envInt("MSSQL_MCP_TEST_INT", 42); got != 42 {
		t.Errorf("envInt = %d, want fallback 42", got)
	}
	t.Setenv("MSSQL_MCP_TEST_INT", " 7 ")
	if got := envInt("MSSQL_MCP_TEST_INT", 42); got != 7 {
		t.Errorf("envInt = %d, want 7", got)
	}
}

func TestFileFormat(t *testing.T) {
	data := []byte(`
sql_server: "localhost"
sql_server_port: "1433"
sql_database: "appdb"
sql_encrypt: false
sql_max_rows: 250
`)
	s := defaults()
	if err := yaml.Unmarshal(data, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Server != "localhost" || s.Port != "1433" || s.Database != "appdb" {
		t.Errorf("unexpected settings: %+v", s)
	}
	if s.Encrypt {
		t.Error("Encrypt should be false from file")
	}
	if s.MaxRows != 250 {
		t.Errorf("MaxRows = %d, want 250", s.MaxRows)
	}
	// Keys absent from the file keep their defaults.
	if !s.EnforceReadonly || s.QueryTimeout != DefaultQueryTimeout {
		t.Errorf("defaults lost for absent keys: %+v", s)
	}
}
