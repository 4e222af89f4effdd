// Package sequence assigns the zero-padded monotonic filenames used for
// capture output. The counter is scoped to one output directory and one
// run of the tool; restarting against a non-empty directory continues one
// past the highest existing index instead of overwriting.
package sequence

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/clickshot/clickshot/internal/logger"
)

// ErrSequenceExhausted is returned past the padding width; the sequence
// never silently widens.
var ErrSequenceExhausted = errors.New("sequence exhausted")

const maxIndex = 999

var namePattern = regexp.MustCompile(`^(\d{3})\.(png|jpe?g|gif)$`)

// Namer issues the next filename in a directory's capture sequence
type Namer struct {
	dir     string
	ext     string
	next    int
	scanned bool
}

// NewNamer creates a namer for one output directory. The extension is
// used for issued names; the startup scan counts every numbered image so
// mixed png/gif directories keep a single sequence.
func NewNamer(dir, ext string) *Namer {
	return &Namer{dir: dir, ext: ext, next: 1}
}

// Next returns the upcoming filename without consuming it. Call Commit
// after the file has actually been written.
func (n *Namer) Next() (string, error) {
	if !n.scanned {
		if err := n.scan(); err != nil {
			return "", err
		}
		n.scanned = true
	}

	if n.next > maxIndex {
		return "", fmt.Errorf("%w: directory %s already holds %03d captures", ErrSequenceExhausted, n.dir, maxIndex)
	}

	return fmt.Sprintf("%03d.%s", n.next, n.ext), nil
}

// Commit advances the counter. Call it exactly once per persisted frame.
func (n *Namer) Commit() {
	n.next++
}

func (n *Namer) scan() error {
	entries, err := os.ReadDir(n.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to scan output directory: %w", err)
	}

	highest := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := namePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if idx > highest {
			highest = idx
		}
	}

	if highest > 0 {
		n.next = highest + 1
		logger.WithComponent("sequence").Info().
			Str("dir", n.dir).
			Int("resume_at", n.next).
			Msg("Continuing existing capture sequence")
	}

	return nil
}
