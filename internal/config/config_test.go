package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listing.PageSize != 9 {
		t.Errorf("Expected page size 9, got %d", cfg.Listing.PageSize)
	}
	if cfg.Listing.RelatedLimit != 3 {
		t.Errorf("Expected related limit 3, got %d", cfg.Listing.RelatedLimit)
	}
	if cfg.Cache.UsersTTL != time.Minute {
		t.Errorf("Expected users TTL 1m, got %v", cfg.Cache.UsersTTL)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Errorf("Expected wildcard origin, got %v", cfg.Server.AllowedOrigins)
	}
	if !cfg.Server.Compress {
		t.Error("Expected compression on by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LISTING_PAGE_SIZE", "12")
	t.Setenv("CACHE_USERS_TTL", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SERVER_COMPRESS", "false")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listing.PageSize != 12 {
		t.Errorf("Expected page size 12, got %d", cfg.Listing.PageSize)
	}
	if cfg.Cache.UsersTTL != 30*time.Second {
		t.Errorf("Expected 30s, got %v", cfg.Cache.UsersTTL)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.Compress {
		t.Error("Expected compression off")
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Malformed value should fall back to 25, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"zero page size", map[string]string{"JWT_SECRET": "s", "LISTING_PAGE_SIZE": "0"}},
		{"negative related limit", map[string]string{"JWT_SECRET": "s", "LISTING_RELATED_LIMIT": "-1"}},
		{"zero connect timeout", map[string]string{"JWT_SECRET": "s", "DB_CONNECT_TIMEOUT": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadStore_DoesNotNeedSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "blog")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "blog")
	t.Setenv("DB_SSLMODE", "require")

	cfg, err := LoadStore()
	if err != nil {
		t.Fatalf("LoadStore failed: %v", err)
	}
	if cfg.Database.GetDSN() != "host=db.internal port=5433 user=blog password=pw dbname=blog sslmode=require" {
		t.Errorf("Unexpected DSN %q", cfg.Database.GetDSN())
	}
}
