package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("PRICE_PER_KM", "")
	t.Setenv("DISTANCE_AVG_SPEED_KMH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Pricing.PerKm != 45 || cfg.Pricing.Base != 1000 {
		t.Fatalf("tariff = %+v", cfg.Pricing)
	}
	if cfg.Distance.AvgSpeedKmh != 60 {
		t.Fatalf("average speed = %v", cfg.Distance.AvgSpeedKmh)
	}
	if len(cfg.Auth.SessionSecret) != 64 {
		t.Fatalf("dev secret should be generated, got %q", cfg.Auth.SessionSecret)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PRICE_PER_KM", "20")
	t.Setenv("INSURANCE_RATE", "0.02")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001")
	t.Setenv("DISTANCE_AVG_SPEED_KMH", "75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pricing.PerKm != 20 || cfg.Pricing.InsuranceRate != 0.02 {
		t.Fatalf("tariff = %+v", cfg.Pricing)
	}
	if cfg.Auth.SessionTTL != 2*time.Hour || cfg.Notify.TelegramChatID != -1001 || cfg.Distance.AvgSpeedKmh != 75 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PRICE_BASE", "lots")
	t.Setenv("REDIS_DB", "x")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "PRICE_BASE") || !strings.Contains(err.Error(), "REDIS_DB") {
		t.Fatalf("error should name both keys: %v", err)
	}
}

func TestProductionRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without SESSION_SECRET in production")
	}
}

func TestStringMasksSecrets(t *testing.T) {
	cfg := &Config{
		Auth:     AuthConfig{SessionSecret: "topsecret"},
		Distance: DistanceConfig{ORSKey: "orskey"},
		Notify:   NotifyConfig{TelegramToken: "tg"},
	}
	s := cfg.String()
	for _, secret := range []string{"topsecret", "orskey", "tg:"} {
		if strings.Contains(s, secret) {
			t.Fatalf("String leaks %q: %s", secret, s)
		}
	}
}
