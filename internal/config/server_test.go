package config

import "testing"

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.PanquizBaseURL != "https://play.panquiz.com" {
		t.Fatalf("PanquizBaseURL = %q", cfg.PanquizBaseURL)
	}
	if cfg.ProbeBatchSize != 50 {
		t.Fatalf("ProbeBatchSize = %d, want 50", cfg.ProbeBatchSize)
	}
	if cfg.AnswerLatencyMS != 500 {
		t.Fatalf("AnswerLatencyMS = %d, want 500", cfg.AnswerLatencyMS)
	}
	if cfg.DisconnectGraceSec != 10 {
		t.Fatalf("DisconnectGraceSec = %d, want 10", cfg.DisconnectGraceSec)
	}
	if cfg.PostgresDSN != "" {
		t.Fatalf("PostgresDSN = %q, want empty", cfg.PostgresDSN)
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("PANQUIZ_BASE_URL", "http://127.0.0.1:9000")
	t.Setenv("PROBE_BATCH_SIZE", "25")
	t.Setenv("PROBE_LIVENESS_TIMEOUT_MS", "1500")
	t.Setenv("RECONNECT_SETTLE_MS", "100")
	t.Setenv("MCP_ENABLED", "0")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.PanquizBaseURL != "http://127.0.0.1:9000" {
		t.Fatalf("PanquizBaseURL = %q", cfg.PanquizBaseURL)
	}
	if cfg.ProbeBatchSize != 25 {
		t.Fatalf("ProbeBatchSize = %d, want 25", cfg.ProbeBatchSize)
	}
	if cfg.ProbeLivenessTimeoutMS != 1500 {
		t.Fatalf("ProbeLivenessTimeoutMS = %d, want 1500", cfg.ProbeLivenessTimeoutMS)
	}
	if cfg.ReconnectSettleMS != 100 {
		t.Fatalf("ReconnectSettleMS = %d, want 100", cfg.ReconnectSettleMS)
	}
	if cfg.MCPEnabled {
		t.Fatal("MCPEnabled = true, want false")
	}
}
