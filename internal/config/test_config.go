package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	d := defaultConfig()
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:      "http://127.0.0.1:0",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			Token:        "test-token",
			Timeout:      2 * time.Second,
			Language:     "pt-BR",
			MaxPages:     MaxNavigablePages,
			UserAgent:    "reel-test/1.0",
		},
		Database: DatabaseConfig{
			Path:    ":memory:",
			Timeout: 1 * time.Second,
		},
		Server: ServerConfig{
			Addr:              "127.0.0.1:0",
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      5 * time.Second,
			RequestsPerMinute: 1000,
		},
		Log:   LogConfig{Level: "OFF"},
		UI:    d.UI,
		Media: d.Media,
		Keys:  d.Keys,
	}
}
