package config

import "github.com/caarlos0/env/v11"

type PlayerConfig struct {
	BaseURL     string `env:"PANQUIZ_BASE_URL" envDefault:"https://play.panquiz.com"`
	GamePin     string `env:"GAME_PIN,required,notEmpty"`
	DisplayName string `env:"DISPLAY_NAME" envDefault:"dumb-player"`

	AutoAnswer      bool `env:"AUTO_ANSWER" envDefault:"true"`
	AnswerLatencyMS int  `env:"ANSWER_LATENCY_MS" envDefault:"500"`
}

func LoadPlayer() (PlayerConfig, error) {
	var cfg PlayerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
