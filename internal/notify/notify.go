// Package notify delivers reminder notifications to the desktop, falling back
// to a log line when desktop notifications are unavailable.
package notify

import (
	"errors"
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
)

var ErrUnsupported = errors.New("notify: desktop notifications unsupported")

type Notifier interface {
	// RequestPermission reports whether notifications may be shown.
	RequestPermission() bool
	Show(title, body string) error
}

type Noop struct{}

func (Noop) RequestPermission() bool { return true }
func (Noop) Show(string, string) error { return nil }

// Log writes each notification as a log line.
type Log struct {
	Logger *log.Logger
}

func (Log) RequestPermission() bool { return true }

func (l Log) Show(title, body string) error {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("[notify] %s: %s", title, body)
	return nil
}

// Desktop shells out to notify-send on Linux and osascript on macOS.
type Desktop struct {
	goos     string
	lookPath func(string) (string, error)
	run      func(name string, args ...string) error
}

func NewDesktop() *Desktop {
	return &Desktop{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

func (d *Desktop) tool() string {
	switch d.goos {
	case "linux":
		return "notify-send"
	case "darwin":
		return "osascript"
	default:
		return ""
	}
}

func (d *Desktop) RequestPermission() bool {
	tool := d.tool()
	if tool == "" {
		return false
	}
	_, err := d.lookPath(tool)
	return err == nil
}

func (d *Desktop) Show(title, body string) error {
	switch d.goos {
	case "linux":
		return d.run("notify-send", title, body)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return d.run("osascript", "-e", script)
	default:
		return fmt.Errorf("%w on %s", ErrUnsupported, d.goos)
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Fallback shows through Primary while permission is granted and routes to
// Secondary when permission is denied or Primary fails.
type Fallback struct {
	Primary   Notifier
	Secondary Notifier
	Logger    *log.Logger

	granted bool
}

func NewFallback(primary Notifier, logger *log.Logger) *Fallback {
	if logger == nil {
		logger = log.Default()
	}
	return &Fallback{Primary: primary, Secondary: Log{Logger: logger}, Logger: logger}
}

// RequestPermission asks Primary once per call; the answer sticks until the
// next call.
func (f *Fallback) RequestPermission() bool {
	f.granted = f.Primary != nil && f.Primary.RequestPermission()
	if !f.granted {
		f.Logger.Printf("[notify] desktop notifications unavailable, using log output")
	}
	return true
}

func (f *Fallback) Show(title, body string) error {
	if f.granted {
		err := f.Primary.Show(title, body)
		if err == nil {
			return nil
		}
		f.Logger.Printf("[notify] desktop notification failed: %v", err)
	}
	return f.Secondary.Show(title, body)
}
