// Package voice turns a speech transcript source into task text.
package voice

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

var (
	ErrUnsupported = errors.New("voice: recognition not supported")
	ErrNoSpeech    = errors.New("voice: no transcript")
)

// Recognizer yields one final transcript per call.
type Recognizer interface {
	Transcribe(ctx context.Context) (string, error)
}

// Unsupported is the recognizer used when no speech source is configured.
type Unsupported struct{}

func (Unsupported) Transcribe(context.Context) (string, error) {
	return "", ErrUnsupported
}

var isTerminal = func(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// FromInput picks the recognizer for r. An interactive terminal carries no
// transcript, so it yields Unsupported; anything else is read line by line.
func FromInput(r io.Reader) Recognizer {
	if f, ok := r.(*os.File); ok && isTerminal(f.Fd()) {
		return Unsupported{}
	}
	return NewLineRecognizer(r)
}

// LineRecognizer reads transcripts line by line, e.g. from a speech-to-text
// process piped into stdin. Blank lines are skipped.
type LineRecognizer struct {
	scanner *bufio.Scanner
}

func NewLineRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{scanner: bufio.NewScanner(r)}
}

func (l *LineRecognizer) Transcribe(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !l.scanner.Scan() {
			if err := l.scanner.Err(); err != nil {
				return "", err
			}
			return "", ErrNoSpeech
		}
		if line := strings.TrimSpace(l.scanner.Text()); line != "" {
			return line, nil
		}
	}
}
