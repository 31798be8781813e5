package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	PanquizBaseURL string `env:"PANQUIZ_BASE_URL" envDefault:"https://play.panquiz.com"`

	AnswerLatencyMS    int `env:"ANSWER_LATENCY_MS" envDefault:"500"`
	DisconnectGraceSec int `env:"DISCONNECT_GRACE_SEC" envDefault:"10"`
	ReconnectSettleMS  int `env:"RECONNECT_SETTLE_MS" envDefault:"2000"`

	SweepIntervalSec int `env:"SWEEP_INTERVAL_SEC" envDefault:"30"`
	CloseGraceSec    int `env:"CLOSE_GRACE_SEC" envDefault:"30"`
	IdleMaxSec       int `env:"IDLE_MAX_SEC" envDefault:"300"`

	ProbeBatchSize         int    `env:"PROBE_BATCH_SIZE" envDefault:"50"`
	ProbeLivenessTimeoutMS int    `env:"PROBE_LIVENESS_TIMEOUT_MS" envDefault:"1000"`
	ProbeDecoyName         string `env:"PROBE_DECOY_NAME" envDefault:"Guest"`

	MCPEnabled bool `env:"MCP_ENABLED" envDefault:"true"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
