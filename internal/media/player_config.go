package media

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

//go:embed players.toml
var playersTOML []byte

// PlayerDefinition defines how a media player should be invoked
type PlayerDefinition struct {
	Description string    `toml:"description"`
	Platforms   []string  `toml:"platforms"`
	Video       *TypeArgs `toml:"video,omitempty"`
	Image       *TypeArgs `toml:"image,omitempty"`
}

// TypeArgs holds the arguments for one media type, optionally per platform.
type TypeArgs struct {
	Args        []string `toml:"args,omitempty"`
	ArgsDarwin  []string `toml:"args_darwin,omitempty"`
	ArgsLinux   []string `toml:"args_linux,omitempty"`
	ArgsWindows []string `toml:"args_windows,omitempty"`
}

type PlayersConfig struct {
	Players map[string]PlayerDefinition `toml:"players"`
}

// PlayerRegistry maps player names to their invocation.
type PlayerRegistry struct {
	players map[string]PlayerDefinition
	goos    string
}

// NewPlayerRegistry loads the built-in definitions and merges
// ~/.config/reel/players.toml over them when present.
func NewPlayerRegistry() (*PlayerRegistry, error) {
	var cfg PlayersConfig
	if err := toml.Unmarshal(playersTOML, &cfg); err != nil {
		return nil, fmt.Errorf("parsing players.toml: %w", err)
	}
	if cfg.Players == nil {
		cfg.Players = map[string]PlayerDefinition{}
	}

	r := &PlayerRegistry{players: cfg.Players, goos: runtime.GOOS}
	if home, err := os.UserHomeDir(); err == nil {
		r.merge(filepath.Join(home, ".config", "reel", "players.toml"))
	}
	return r, nil
}

func (r *PlayerRegistry) merge(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var user PlayersConfig
	if err := toml.Unmarshal(data, &user); err != nil {
		return
	}
	for name, def := range user.Players {
		r.players[name] = def
	}
}

// Args returns the command line for playerName opening target as t. Players
// without a definition get just the target.
func (r *PlayerRegistry) Args(playerName string, t Type, target string) ([]string, error) {
	player, ok := r.players[playerName]
	if !ok {
		return []string{target}, nil
	}

	if !contains(player.Platforms, r.goos) {
		return nil, fmt.Errorf("%s not supported on %s", playerName, r.goos)
	}

	var ta *TypeArgs
	switch t {
	case TypeVideo:
		ta = player.Video
	case TypeImage:
		ta = player.Image
	}
	if ta == nil {
		return nil, fmt.Errorf("%s doesn't support %s", playerName, t)
	}

	args := append([]string(nil), r.platformArgs(ta)...)
	return append(args, target), nil
}

func (r *PlayerRegistry) platformArgs(ta *TypeArgs) []string {
	switch r.goos {
	case "darwin":
		if len(ta.ArgsDarwin) > 0 {
			return ta.ArgsDarwin
		}
	case "linux":
		if len(ta.ArgsLinux) > 0 {
			return ta.ArgsLinux
		}
	case "windows":
		if len(ta.ArgsWindows) > 0 {
			return ta.ArgsWindows
		}
	}
	return ta.Args
}
