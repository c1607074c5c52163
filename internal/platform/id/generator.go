package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Generator creates opaque IDs used to correlate log lines of one run.
type Generator interface {
	NewID() (string, error)
}

// RunIDGenerator yields "<prefix>_<utc timestamp>_<random hex>" so IDs sort
// by start time.
type RunIDGenerator struct {
	prefix string
	now    func() time.Time
}

func NewRunIDGenerator(prefix string) *RunIDGenerator {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "run"
	}
	return &RunIDGenerator{prefix: prefix, now: time.Now}
}

func (g *RunIDGenerator) NewID() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return g.prefix + "_" + g.now().UTC().Format("20060102T150405Z") + "_" + hex.EncodeToString(buf), nil
}
