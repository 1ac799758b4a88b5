// Package migrate implements the versioned schema migration layer: an
// ordered, checksummed sequence of SQL steps, a durable append-only ledger
// of applied ordinals, and a runner that brings the database to the version
// the running code expects under a cross-process advisory lock.
package migrate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Step is one immutable schema change: a unique strictly-increasing ordinal,
// a forward SQL action, and an optional reverse action. Steps are part of
// the deployed code and are identified by ordinal, not content hash, so
// redeploying identical code is idempotent.
type Step struct {
	Ordinal int64
	Name    string
	Up      string
	Down    string

	// NoTx marks a step whose forward action cannot run inside a
	// transaction (e.g. CREATE INDEX CONCURRENTLY). The runner applies it
	// under the in-progress/committed ledger protocol instead.
	NoTx bool
}

// Checksum returns the hex sha256 of the step's forward SQL. It is recorded
// in the ledger for drift detection; it does not participate in identity.
func (s Step) Checksum() string {
	sum := sha256.Sum256([]byte(s.Up))
	return hex.EncodeToString(sum[:])
}

// Migration file markers. Files are named NNNN_description.sql; the up
// section is mandatory, the down section optional.
const (
	markerUp   = "-- migrate:up"
	markerDown = "-- migrate:down"
	markerNoTx = "-- migrate:no-transaction"
)

var fileNamePattern = regexp.MustCompile(`^(\d+)_([A-Za-z0-9_-]+)\.sql$`)

// LoadSteps reads every *.sql file in fsys, parses it into a Step, and
// returns the steps sorted by ordinal. It verifies the sequence is free of
// duplicates and gaps and starts at ordinal 1, failing fast on a malformed
// deployment rather than at apply time.
func LoadSteps(fsys fs.FS) ([]Step, error) {
	entries, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("migrate: listing migration files: %w", err)
	}

	steps := make([]Step, 0, len(entries))
	for _, name := range entries {
		step, err := parseFile(fsys, name)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].Ordinal < steps[j].Ordinal })

	if err := verifySequence(steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// parseFile parses one migration file into a Step.
func parseFile(fsys fs.FS, name string) (Step, error) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return Step{}, fmt.Errorf("migrate: file %q does not match NNNN_name.sql", name)
	}
	ordinal, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || ordinal <= 0 {
		return Step{}, fmt.Errorf("migrate: file %q has invalid ordinal %q", name, m[1])
	}

	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Step{}, fmt.Errorf("migrate: reading %q: %w", name, err)
	}

	step := Step{Ordinal: ordinal, Name: m[2]}

	// Split into sections by marker lines. Everything before the up marker
	// is header; the no-transaction marker may appear anywhere in it.
	var section *strings.Builder
	var up, down strings.Builder
	for _, line := range strings.Split(string(raw), "\n") {
		switch strings.TrimSpace(line) {
		case markerUp:
			section = &up
			continue
		case markerDown:
			section = &down
			continue
		case markerNoTx:
			step.NoTx = true
			continue
		}
		if section != nil {
			section.WriteString(line)
			section.WriteString("\n")
		}
	}

	step.Up = strings.TrimSpace(up.String())
	step.Down = strings.TrimSpace(down.String())
	if step.Up == "" {
		return Step{}, fmt.Errorf("migrate: file %q has no %q section", name, markerUp)
	}
	return step, nil
}

// verifySequence checks that ordinals form the gapless sequence 1..n.
func verifySequence(steps []Step) error {
	for i, step := range steps {
		want := int64(i + 1)
		switch {
		case step.Ordinal == want:
		case i > 0 && step.Ordinal == steps[i-1].Ordinal:
			return fmt.Errorf("%w: %d", ErrDuplicateOrdinal, step.Ordinal)
		default:
			return fmt.Errorf("%w: expected %d, found %d", ErrOrdinalGap, want, step.Ordinal)
		}
	}
	return nil
}
