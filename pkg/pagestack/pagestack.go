// Package pagestack hosts a navigation stack for a full-screen application on
// embedded Linux devices.
//
// A Host ties together the navigation coordinator, the back guard chain, the
// input sources that produce back signals, and the storage that keeps a
// session across suspend and resume. Applications register their pages,
// navigate to a first page and call Run.
package pagestack

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack/config"
	"github.com/BrandonKowalski/pagestack/pkg/pagestack/constants"
	"github.com/BrandonKowalski/pagestack/pkg/pagestack/input"
	"github.com/BrandonKowalski/pagestack/pkg/pagestack/internal"
	"github.com/BrandonKowalski/pagestack/pkg/pagestack/navigation"
	"github.com/BrandonKowalski/pagestack/pkg/pagestack/storage"
)

// Options configures a Host.
type Options struct {
	HostID           string                    // Key the session is stored under; derived from the executable when empty
	Registry         *navigation.Registry      // Page registrations; a new registry is created when nil
	Presenter        navigation.Presenter      // Renders page content
	Storage          storage.Storage           // Overrides SessionBackend and SessionPath
	SessionBackend   string                    // memory, file or sqlite
	SessionPath      string                    // Directory (file) or database file (sqlite)
	SDL              *input.SDLSource          // Runs on the goroutine that calls Run
	Sources          []input.Source            // Additional back signal sources
	Language         string                    // BCP 47 tag for user-facing messages
	LogPath          string                    // Full path for log file including filename (creates parent directories)
	LogLevel         string                    // Application logger level
	InternalLogLevel string                    // Engine logger level; DEV mode forces debug
	OnOutcome        func(input.Signal, error) // Called after every dispatched back signal
}

// FromConfig converts loaded configuration into host options. Sources are
// built from the input section; SDL is always configured, evdev only when
// enabled.
func FromConfig(cfg config.Config) (Options, error) {
	opts := Options{
		HostID:           cfg.Session.HostID,
		SessionBackend:   cfg.Session.Backend,
		SessionPath:      cfg.Session.Path,
		Language:         cfg.Locale.Language,
		LogPath:          cfg.Log.Path,
		LogLevel:         cfg.Log.Level,
		InternalLogLevel: cfg.Log.InternalLevel,
	}

	button, ok := constants.ParseVirtualButton(cfg.Input.BackButton)
	if !ok {
		button = constants.DefaultBackButton
	}
	src := input.NewSDLSource()
	src.BackButtons = []constants.VirtualButton{button}
	src.FlipFaceButtons = cfg.Input.FlipFaceButtons
	if len(cfg.Input.BackKeys) > 0 {
		src.BackKeys = src.BackKeys[:0]
		for _, name := range cfg.Input.BackKeys {
			if key := sdl.GetKeyFromName(name); key != sdl.K_UNKNOWN {
				src.BackKeys = append(src.BackKeys, key)
			}
		}
	}
	opts.SDL = src

	if cfg.Input.Evdev {
		ev, err := input.NewEvdevSource(cfg.Input.EvdevDevice, cfg.Input.EvdevCodes)
		if err != nil {
			return Options{}, err
		}
		opts.Sources = append(opts.Sources, ev)
	}
	return opts, nil
}

// DefaultHostID derives a stable host ID from the running executable, so a
// restarted process finds the session its previous run suspended.
func DefaultHostID() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("pagestack:"+filepath.Clean(exe))).String()
}

// sessionPath points the sqlite backend at a file when given a directory.
func sessionPath(backend, path string) string {
	if strings.EqualFold(backend, storage.BackendSQLite) && filepath.Ext(path) == "" {
		return filepath.Join(path, "sessions.db")
	}
	return path
}

func setupLogging(opts Options) {
	if opts.LogPath != "" {
		internal.SetLogPath(opts.LogPath)
	}
	if opts.LogLevel != "" {
		internal.SetRawLogLevel(opts.LogLevel)
	}

	if constants.IsDevMode() {
		internal.SetInternalLogLevel(slog.LevelDebug)
	} else if opts.InternalLogLevel != "" {
		internal.SetInternalLogLevel(internal.ParseLogLevel(opts.InternalLogLevel))
	}
}

// SetLogPath sets the full path for the log file, including filename.
// Creates all necessary parent directories.
// Call before New to take effect.
func SetLogPath(path string) {
	internal.SetLogPath(path)
}

// GetLogger returns the application logger for structured logging.
func GetLogger() *slog.Logger {
	return internal.GetLogger()
}

// SetLogLevel sets the minimum log level for the application logger.
func SetLogLevel(level slog.Level) {
	internal.SetLogLevel(level)
}

// SetRawLogLevel parses and sets the log level from a string (e.g., "debug", "info", "error").
func SetRawLogLevel(level string) {
	internal.SetRawLogLevel(level)
}

// SetInternalLogLevel sets the level of the engine's own logging.
func SetInternalLogLevel(level slog.Level) {
	internal.SetInternalLogLevel(level)
}
