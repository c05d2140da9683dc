package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pders01/reel/internal/validation"
)

// MaxNavigablePages is the deepest page TMDB serves for list endpoints.
const MaxNavigablePages = 500

type Config struct {
	TMDB     TMDBConfig     `mapstructure:"tmdb"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
	Media    MediaConfig    `mapstructure:"media"`
	Keys     KeyConfig      `mapstructure:"keys"`
}

type TMDBConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	Token        string        `mapstructure:"token"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Language     string        `mapstructure:"language"`
	IncludeAdult bool          `mapstructure:"include_adult"`
	MaxPages     int           `mapstructure:"max_pages"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	Burst        int           `mapstructure:"burst"`
	UserAgent    string        `mapstructure:"user_agent"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type UIConfig struct {
	Colors UIColors `mapstructure:"colors"`
	// Recommendations caps the related titles listed on the detail view.
	Recommendations int `mapstructure:"recommendations"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type MediaConfig struct {
	Darwin        MediaPlayers `mapstructure:"darwin"`
	Linux         MediaPlayers `mapstructure:"linux"`
	Windows       MediaPlayers `mapstructure:"windows"`
	DefaultOpener string       `mapstructure:"default_opener"`
}

type MediaPlayers struct {
	Video []string `mapstructure:"video"`
	Image []string `mapstructure:"image"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit           string `mapstructure:"quit"`
	Search         string `mapstructure:"search"`
	Favorites      string `mapstructure:"favorites"`
	ToggleFavorite string `mapstructure:"toggle_favorite"`
	NextPage       string `mapstructure:"next_page"`
	PrevPage       string `mapstructure:"prev_page"`
	Trailer        string `mapstructure:"trailer"`
	Poster         string `mapstructure:"poster"`
	Back           string `mapstructure:"back"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".reel")

	return &Config{
		TMDB: TMDBConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			Timeout:      15 * time.Second,
			Language:     "pt-BR",
			IncludeAdult: false,
			MaxPages:     MaxNavigablePages,
			RateLimit:    40,
			Burst:        10,
			UserAgent:    "reel/1.0 (https://github.com/pders01/reel)",
		},
		Database: DatabaseConfig{
			Path:        filepath.Join(dataDir, "reel.db"),
			Timeout:     1 * time.Second,
			SearchIndex: filepath.Join(dataDir, "favorites.bleve"),
		},
		Server: ServerConfig{
			Addr:              "127.0.0.1:8484",
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			RequestsPerMinute: 120,
		},
		Log: LogConfig{
			Level: "OFF",
			File:  filepath.Join(dataDir, "reel.log"),
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Recommendations: 12,
		},
		Media: MediaConfig{
			Darwin: MediaPlayers{
				Video: []string{"iina", "mpv", "vlc"},
				Image: []string{"open"},
			},
			Linux: MediaPlayers{
				Video: []string{"mpv", "vlc"},
				Image: []string{"feh", "eog", "xdg-open"},
			},
			Windows: MediaPlayers{
				Video: []string{"mpv", "vlc"},
				Image: []string{"start"},
			},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:           "q",
				Search:         "s",
				Favorites:      "f",
				ToggleFavorite: "f",
				NextPage:       "right",
				PrevPage:       "left",
				Trailer:        "t",
				Poster:         "o",
				Back:           "esc",
			},
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// Load reads configuration from configPath (or the default locations when empty),
// a .env file in the working directory, and REEL_* environment variables.
func Load(configPath string) (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()

	cfg := defaultConfig()
	// Env overrides only apply to keys viper knows about.
	v.SetDefault("tmdb.base_url", cfg.TMDB.BaseURL)
	v.SetDefault("tmdb.image_base_url", cfg.TMDB.ImageBaseURL)
	v.SetDefault("tmdb.token", "")
	v.SetDefault("tmdb.language", cfg.TMDB.Language)
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "reel")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("REEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("tmdb.token", "REEL_TMDB_TOKEN", "TMDB_TOKEN"); err != nil {
		return nil, fmt.Errorf("binding token env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Decoding over the defaults keeps every field the file does not mention.
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.TMDB.MaxPages <= 0 || cfg.TMDB.MaxPages > MaxNavigablePages {
		cfg.TMDB.MaxPages = MaxNavigablePages
	}

	if err := validateURLs(cfg); err != nil {
		return nil, err
	}

	expandPaths(cfg)

	return cfg, nil
}

func validateURLs(cfg *Config) error {
	base, err := validation.ValidateBaseURL(cfg.TMDB.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid tmdb.base_url %q: %w", cfg.TMDB.BaseURL, err)
	}
	images, err := validation.ValidateBaseURL(cfg.TMDB.ImageBaseURL)
	if err != nil {
		return fmt.Errorf("invalid tmdb.image_base_url %q: %w", cfg.TMDB.ImageBaseURL, err)
	}
	cfg.TMDB.BaseURL = base
	cfg.TMDB.ImageBaseURL = images
	return nil
}

// HasToken reports whether a TMDB bearer token is configured.
func (c *Config) HasToken() bool {
	return strings.TrimSpace(c.TMDB.Token) != ""
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Log.File = expandPath(cfg.Log.File)
}

// Save writes cfg as TOML. The API token is never written to disk.
func Save(config *Config, path string) error {
	v := viper.New()

	tmdbCfg := map[string]interface{}{
		"base_url":       config.TMDB.BaseURL,
		"image_base_url": config.TMDB.ImageBaseURL,
		"timeout":        config.TMDB.Timeout.String(),
		"language":       config.TMDB.Language,
		"include_adult":  config.TMDB.IncludeAdult,
		"max_pages":      config.TMDB.MaxPages,
		"rate_limit":     config.TMDB.RateLimit,
		"burst":          config.TMDB.Burst,
		"user_agent":     config.TMDB.UserAgent,
	}

	dbCfg := map[string]interface{}{
		"path":         config.Database.Path,
		"timeout":      config.Database.Timeout.String(),
		"search_index": config.Database.SearchIndex,
	}

	serverCfg := map[string]interface{}{
		"addr":                config.Server.Addr,
		"read_timeout":        config.Server.ReadTimeout.String(),
		"write_timeout":       config.Server.WriteTimeout.String(),
		"requests_per_minute": config.Server.RequestsPerMinute,
	}

	v.Set("tmdb", tmdbCfg)
	v.Set("database", dbCfg)
	v.Set("server", serverCfg)
	v.Set("log", map[string]interface{}{"level": config.Log.Level, "file": config.Log.File})
	c := config.UI.Colors
	v.Set("ui", map[string]interface{}{
		"recommendations": config.UI.Recommendations,
		"colors": map[string]interface{}{
			"primary":    c.Primary,
			"secondary":  c.Secondary,
			"accent":     c.Accent,
			"background": c.Background,
			"surface":    c.Surface,
			"text":       c.Text,
			"muted":      c.Muted,
			"error":      c.Error,
			"success":    c.Success,
		},
	})
	v.Set("media", map[string]interface{}{
		"default_opener": config.Media.DefaultOpener,
		"darwin":         playersMap(config.Media.Darwin),
		"linux":          playersMap(config.Media.Linux),
		"windows":        playersMap(config.Media.Windows),
	})
	b := config.Keys.Bindings
	v.Set("keys", map[string]interface{}{
		"modifier": config.Keys.Modifier,
		"bindings": map[string]interface{}{
			"quit":            b.Quit,
			"search":          b.Search,
			"favorites":       b.Favorites,
			"toggle_favorite": b.ToggleFavorite,
			"next_page":       b.NextPage,
			"prev_page":       b.PrevPage,
			"trailer":         b.Trailer,
			"poster":          b.Poster,
			"back":            b.Back,
		},
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func playersMap(p MediaPlayers) map[string]interface{} {
	return map[string]interface{}{"video": p.Video, "image": p.Image}
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}

// DefaultConfigPath is where GenerateDefaultConfig writes when no path is given.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "reel", "config.toml")
}
