package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAMLWithEnvOverlay(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  storage: memory
auth:
  jwtSecret: from-file
  tokenTTL: 2h
listing:
  maxLimit: 50
`)
	conf, err := LoadWith(path, map[string]string{
		"MARKETPLACE_JWT_SECRET": "from-env",
		"MARKETPLACE_REDIS_ADDR": "localhost:6379",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if conf.Server.Addr != ":9000" || conf.Server.Storage != StorageMemory {
		t.Fatalf("unexpected server %+v", conf.Server)
	}
	if conf.Auth.JWTSecret != "from-env" {
		t.Fatalf("expected env to override the file, got %q", conf.Auth.JWTSecret)
	}
	if conf.Server.RedisAddr != "localhost:6379" {
		t.Fatalf("expected redis addr from env, got %q", conf.Server.RedisAddr)
	}
	if conf.Auth.TokenTTL != 2*time.Hour || conf.Listing.MaxLimit != 50 {
		t.Fatalf("unexpected values %+v %+v", conf.Auth, conf.Listing)
	}
	if conf.Listing.DefaultLimit != 10 || conf.Auth.LoginMaxAttempts != 5 {
		t.Fatalf("expected defaults to survive, got %+v %+v", conf.Listing, conf.Auth)
	}
}

func TestLoadFailsWithoutSecret(t *testing.T) {
	path := writeConfig(t, "server:\n  storage: memory\n")
	if _, err := LoadWith(path, map[string]string{}); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := LoadWith(filepath.Join(t.TempDir(), "absent.yaml"), map[string]string{}); err == nil {
		t.Fatalf("expected missing explicit file to fail")
	}
}

func TestValidate(t *testing.T) {
	base := Defaults()
	base.Auth.JWTSecret = "secret"
	base.Server.PostgresDsn = "postgres://localhost/marketplace"
	if err := base.Validate(); err != nil {
		t.Fatalf("expected defaults with secret and dsn to validate, got %v", err)
	}

	cases := map[string]func(*Config){
		"no dsn":          func(c *Config) { c.Server.PostgresDsn = "" },
		"unknown storage": func(c *Config) { c.Server.Storage = "sqlite" },
		"zero ttl":        func(c *Config) { c.Auth.TokenTTL = 0 },
		"negative skew":   func(c *Config) { c.Auth.ClockSkew = -time.Second },
		"default > max":   func(c *Config) { c.Listing.DefaultLimit = 200 },
		"no attempts":     func(c *Config) { c.Auth.LoginMaxAttempts = 0 },
		"owner ttl 0":     func(c *Config) { c.Listing.OwnerCacheTTL = 0 },
		"owner ttl ms":    func(c *Config) { c.Listing.OwnerCacheTTL = 500 * time.Millisecond },
		"owner ttl 31d":   func(c *Config) { c.Listing.OwnerCacheTTL = 31 * 24 * time.Hour },
	}
	for name, mutate := range cases {
		c := base
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation failure", name)
		}
	}

	edge := base
	edge.Listing.OwnerCacheTTL = MaxOwnerCacheTTL
	if err := edge.Validate(); err != nil {
		t.Fatalf("expected a 30 day owner cache ttl to validate, got %v", err)
	}
}
