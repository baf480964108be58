package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnsupportedURL is returned for anything other than an http(s) URL
var ErrUnsupportedURL = errors.New("only http and https links can be opened")

// Launcher opens links (a game's website) in the user's browser
type Launcher struct {
	command string // configured browser command, empty for system default
	logger  *slog.Logger
	start   func(name string, args ...string) error
}

// NewLauncher creates a launcher. An empty command uses $BROWSER, then the
// system default handler.
func NewLauncher(command string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	if command == "" {
		command = os.Getenv("BROWSER")
	}
	return &Launcher{command: command, logger: logger, start: startDetached}
}

func startDetached(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens link without waiting for the browser to exit
func (l *Launcher) Open(link string) error {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrUnsupportedURL, link)
	}

	name, args := l.commandFor(u.String())
	l.logger.Info("opening link", "command", name, "url", u.String())
	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", u.String(), err)
	}
	return nil
}

// commandFor returns the configured command or the system default handler
func (l *Launcher) commandFor(link string) (string, []string) {
	if l.command != "" {
		fields := strings.Fields(l.command)
		return fields[0], append(fields[1:], link)
	}

	switch runtime.GOOS {
	case "darwin":
		return "open", []string{link}
	case "windows":
		return "cmd", []string{"/c", "start", "", link}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{link}
	}
}
