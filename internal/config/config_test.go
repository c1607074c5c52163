package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_CrawlerDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CRAWLER_LEAGUES", "")
	t.Setenv("CRAWLER_MAX_RETRIES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	cr := cfg.Crawler
	if cr.BaseURL != DefaultTransfermarktBaseURL {
		t.Fatalf("unexpected base url %q", cr.BaseURL)
	}
	if cr.MaxRetries != 3 || cr.RetryBaseDelay != time.Second {
		t.Fatalf("unexpected retry defaults: %d, %s", cr.MaxRetries, cr.RetryBaseDelay)
	}
	if cr.ClubTimeout != 30*time.Second || cr.PlayerTimeout != 45*time.Second {
		t.Fatalf("unexpected timeouts: %s, %s", cr.ClubTimeout, cr.PlayerTimeout)
	}
	if cr.ClubDelay != 600*time.Millisecond || cr.LeagueDelay != 2*time.Second {
		t.Fatalf("unexpected delays: %s, %s", cr.ClubDelay, cr.LeagueDelay)
	}
	if cr.PlayersPerLeague != 100 || cr.Workers != 1 || cr.FallbackPolicy != FallbackEmptyOrMissing {
		t.Fatalf("unexpected crawler defaults: %+v", cr)
	}
	if cr.Circuit.Enabled {
		t.Fatalf("circuit breaker should be disabled by default")
	}

	wantCodes := []string{"GB1", "ES1", "FR1", "IT1", "L1"}
	if len(cr.Leagues) != len(wantCodes) {
		t.Fatalf("expected %d leagues, got %+v", len(wantCodes), cr.Leagues)
	}
	for i, code := range wantCodes {
		if cr.Leagues[i].Code != code {
			t.Fatalf("league %d: expected %s, got %s", i, code, cr.Leagues[i].Code)
		}
	}
	if cr.Leagues[0].Name != "Premier League" {
		t.Fatalf("unexpected first league name %q", cr.Leagues[0].Name)
	}

	if cfg.Loader.DataDir != "data" || cfg.Loader.BatchSize != 500 {
		t.Fatalf("unexpected loader defaults: %+v", cfg.Loader)
	}
	if cfg.DBMaxOpenConns != 10 || cfg.DBMaxIdleConns != 5 || cfg.DBConnMaxLifetime != 30*time.Minute {
		t.Fatalf("unexpected db pool defaults: %d, %d, %s", cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime)
	}
	if cr.QStash.TargetURL != "" || cr.QStash.Retries != 3 {
		t.Fatalf("unexpected qstash defaults: %+v", cr.QStash)
	}
}

func TestLoad_CrawlerOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvStage)
	t.Setenv("TRANSFERMARKT_BASE_URL", "http://localhost:9000/")
	t.Setenv("CRAWLER_LEAGUES", "Eredivisie:nl1, Liga Portugal:PO1")
	t.Setenv("CRAWLER_WORKERS", "4")
	t.Setenv("CRAWLER_MAX_RPS", "2.5")
	t.Setenv("CRAWLER_FALLBACK_POLICY", "MISSING_ONLY")
	t.Setenv("CRAWLER_SCHEDULE", "0 3 * * *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cr := cfg.Crawler
	if cr.BaseURL != "http://localhost:9000" {
		t.Fatalf("expected trailing slash to be trimmed, got %q", cr.BaseURL)
	}
	if len(cr.Leagues) != 2 || cr.Leagues[0].Code != "NL1" || cr.Leagues[1].Name != "Liga Portugal" {
		t.Fatalf("unexpected leagues: %+v", cr.Leagues)
	}
	if cr.Workers != 4 || cr.MaxRPS != 2.5 {
		t.Fatalf("unexpected concurrency settings: %+v", cr)
	}
	if cr.FallbackPolicy != FallbackMissingOnly {
		t.Fatalf("unexpected fallback policy %q", cr.FallbackPolicy)
	}
	if cr.Schedule != "0 3 * * *" {
		t.Fatalf("unexpected schedule %q", cr.Schedule)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]map[string]string{
		"zero retries":         {"CRAWLER_MAX_RETRIES": "0"},
		"bad retries":          {"CRAWLER_MAX_RETRIES": "three"},
		"bad delay":            {"CRAWLER_CLUB_DELAY": "soon"},
		"unknown fallback":     {"CRAWLER_FALLBACK_POLICY": "always"},
		"malformed league":     {"CRAWLER_LEAGUES": "Premier League"},
		"duplicate league":     {"CRAWLER_LEAGUES": "A:GB1,B:gb1"},
		"unknown store":        {"STORE_DRIVER": "sqlite"},
		"uptrace without dsn":  {"UPTRACE_ENABLED": "true", "UPTRACE_DSN": "", "OTEL_EXPORTER_OTLP_HEADERS": ""},
		"negative rps":         {"CRAWLER_MAX_RPS": "-1"},
		"zero loader batch":    {"LOADER_BATCH_SIZE": "0"},
		"pyroscope no address": {"PYROSCOPE_ENABLED": "true", "PYROSCOPE_SERVER_ADDRESS": ""},
		"zero open conns":      {"DB_MAX_OPEN_CONNS": "0"},
		"qstash without token": {"QSTASH_TARGET_URL": "https://example.com/hook", "QSTASH_TOKEN": ""},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %v", env)
			}
		})
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestParseUptraceDSNFromOTLPHeaders(t *testing.T) {
	got := parseUptraceDSNFromOTLPHeaders(`foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)
	if got != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected dsn %q", got)
	}
	if parseUptraceDSNFromOTLPHeaders("") != "" {
		t.Fatalf("expected empty dsn")
	}
}
