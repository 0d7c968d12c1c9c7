package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"APP_NAME", "APP_ENVIRONMENT", "APP_DEBUG",
		"SERVER_HOST", "SERVER_PORT",
		"DATABASE_HOST", "DATABASE_PORT", "DATABASE_USER", "DATABASE_PASSWORD", "DATABASE_DBNAME",
		"REDIS_HOST", "REDIS_PORT",
		"JWT_SECRET",
		"PAYMENT_PROVIDER",
		"RESERVATION_HOLD_TTL", "RESERVATION_AUTO_ALLOCATE_RETRIES",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.App.Name != "rifahub" {
		t.Errorf("App.Name = %q, want %q", cfg.App.Name, "rifahub")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.DBName != "rifahub" {
		t.Errorf("Database.DBName = %q, want %q", cfg.Database.DBName, "rifahub")
	}
	if cfg.Payment.Provider != "mock" {
		t.Errorf("Payment.Provider = %q, want %q", cfg.Payment.Provider, "mock")
	}
	if cfg.Reservation.HoldTTL != 30*time.Minute {
		t.Errorf("Reservation.HoldTTL = %v, want 30m", cfg.Reservation.HoldTTL)
	}
	if cfg.Reservation.AutoAllocateRetries != 3 {
		t.Errorf("Reservation.AutoAllocateRetries = %d, want 3", cfg.Reservation.AutoAllocateRetries)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	clearEnv(t)
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("RESERVATION_HOLD_TTL", "15m")
	defer os.Unsetenv("SERVER_PORT")
	defer os.Unsetenv("RESERVATION_HOLD_TTL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Reservation.HoldTTL != 15*time.Minute {
		t.Errorf("Reservation.HoldTTL = %v, want 15m", cfg.Reservation.HoldTTL)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}

	want := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := &RedisConfig{Host: "redis.local", Port: 6380}
	if got := cfg.Addr(); got != "redis.local:6380" {
		t.Errorf("Addr() = %q, want %q", got, "redis.local:6380")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty app name", func(c *Config) { c.App.Name = "" }},
		{"invalid port", func(c *Config) { c.Server.Port = 0 }},
		{"empty database host", func(c *Config) { c.Database.Host = "" }},
		{"empty jwt secret", func(c *Config) { c.JWT.Secret = "" }},
		{"default secret in production", func(c *Config) {
			c.App.Environment = "production"
			c.JWT.Secret = "your-secret-key-change-in-production"
		}},
		{"zero hold ttl", func(c *Config) { c.Reservation.HoldTTL = 0 }},
		{"zero allocate retries", func(c *Config) { c.Reservation.AutoAllocateRetries = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Name: "rifahub", Environment: "development"},
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Host:   "localhost",
			DBName: "rifahub",
		},
		JWT: JWTConfig{Secret: "test-secret"},
		Reservation: ReservationConfig{
			HoldTTL:             30 * time.Minute,
			AutoAllocateRetries: 3,
		},
	}
}

func TestIsEnvironmentHelpers(t *testing.T) {
	cfg := validConfig()
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
	cfg.App.Environment = "production"
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
}
