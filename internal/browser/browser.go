package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Runner starts an external command without waiting for it.
type Runner func(name string, args ...string) error

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Opener launches record URLs in the system browser.
type Opener struct {
	goos string
	run  Runner
}

func New() *Opener {
	return &Opener{goos: runtime.GOOS, run: startCommand}
}

// Open validates rawURL and hands it to the platform launcher. Only http and
// https URLs are opened.
func (o *Opener) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	name, args := launcher(o.goos, rawURL)
	if err := o.run(name, args...); err != nil {
		return fmt.Errorf("launching %s: %w", name, err)
	}
	return nil
}

func Open(rawURL string) error {
	return New().Open(rawURL)
}

func launcher(goos, rawURL string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		// rundll32 avoids cmd /c start shell interpretation.
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}
