package media

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/debuglog"
	"github.com/pders01/reel/internal/validation"
)

// ErrNoURL is returned when there is nothing to open, e.g. a title without
// a trailer.
var ErrNoURL = errors.New("no URL to open")

// Starter runs a detached command. Tests replace it to capture invocations.
type Starter func(name string, args ...string) error

type Launcher struct {
	videoPlayer   string
	imageViewer   string
	defaultOpener string
	registry      *PlayerRegistry
	detector      *TypeDetector
	validator     *validation.URLValidator
	start         Starter
}

type LauncherOption func(*Launcher)

func WithStarter(s Starter) LauncherOption {
	return func(l *Launcher) { l.start = s }
}

// WithPlayers skips PATH lookup and uses the given commands as-is.
func WithPlayers(video, image string) LauncherOption {
	return func(l *Launcher) {
		l.videoPlayer = video
		l.imageViewer = image
	}
}

func NewLauncher(cfg *config.Config, opts ...LauncherOption) *Launcher {
	registry, err := NewPlayerRegistry()
	if err != nil {
		debuglog.Warnf("player definitions unavailable: %v", err)
		registry = &PlayerRegistry{players: make(map[string]PlayerDefinition), goos: runtime.GOOS}
	}

	detector, err := NewTypeDetector()
	if err != nil {
		debuglog.Warnf("media types unavailable: %v", err)
		detector = &TypeDetector{config: &TypesConfig{}}
	}

	defaultOpener := cfg.Media.DefaultOpener
	if defaultOpener == "" {
		defaultOpener = detector.GetDefaultOpener()
	}

	l := &Launcher{
		defaultOpener: defaultOpener,
		registry:      registry,
		detector:      detector,
		validator:     validation.NewExternalURLValidator(),
		start:         startDetached,
	}

	var players config.MediaPlayers
	switch runtime.GOOS {
	case "darwin":
		players = cfg.Media.Darwin
	case "linux":
		players = cfg.Media.Linux
	case "windows":
		players = cfg.Media.Windows
	default:
		players = cfg.Media.Linux
	}
	l.videoPlayer = findCommand(players.Video...)
	l.imageViewer = findCommand(players.Image...)

	for _, opt := range opts {
		opt(l)
	}

	if l.videoPlayer == "" {
		l.videoPlayer = l.defaultOpener
	}
	if l.imageViewer == "" {
		l.imageViewer = l.defaultOpener
	}
	return l
}

// Open validates rawURL and hands it to the player configured for its type.
func (l *Launcher) Open(rawURL string) error {
	if rawURL == "" {
		return ErrNoURL
	}
	rawURL, err := l.validator.Validate(rawURL)
	if err != nil {
		return fmt.Errorf("refusing to open URL: %w", err)
	}

	mediaType := l.detector.DetectType(rawURL)

	var playerName string
	switch mediaType {
	case TypeVideo:
		playerName = l.videoPlayer
	case TypeImage:
		playerName = l.imageViewer
	default:
		playerName = l.defaultOpener
	}
	if playerName == "" {
		return fmt.Errorf("no application found to open %s", mediaType)
	}

	logger := debuglog.WithFields(map[string]interface{}{
		"media":  mediaType.String(),
		"player": playerName,
	})
	args, err := l.registry.Args(playerName, mediaType, rawURL)
	if err != nil {
		logger.Debugf("falling back to plain invocation: %v", err)
		args = []string{rawURL}
	}

	name := playerName
	if name == "start" {
		// start is a cmd builtin; the empty string is the window title.
		name = "cmd"
		args = append([]string{"/c", "start", ""}, args...)
	}

	logger.Infof("opening %s", rawURL)
	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("failed to start %s: %w", playerName, err)
	}
	return nil
}

func (l *Launcher) VideoPlayer() string { return l.videoPlayer }

func (l *Launcher) ImageViewer() string { return l.imageViewer }

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
