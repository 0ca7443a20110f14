// Package boards reads the Arduino board database (boards.txt) and exposes
// each board as a read-only Profile.
package boards

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/boardsmith/internal/ctxlog"
	"github.com/vk/boardsmith/internal/faults"
)

// Profile holds the build parameters of one board.
type Profile struct {
	ID      string
	Name    string
	MCU     string
	FCPU    string
	Variant string
}

// CFlags returns the compiler flags for the board at the given platform version.
func (p *Profile) CFlags(platformVersion int) string {
	return fmt.Sprintf("-mmcu=%s -DF_CPU=%s -DARDUINO=%d", p.MCU, p.FCPU, platformVersion)
}

// Database answers board queries.
type Database interface {
	Lookup(id string) (*Profile, error)
	List() []*Profile
	Property(id, property string) (string, error)
}

// TextDatabase is a Database backed by the contents of a boards.txt file.
type TextDatabase struct {
	boards map[string]map[string]string
}

// Path returns the location of boards.txt inside an Arduino installation.
// The file moved under an architecture directory in 1.5.
func Path(arduinoRoot string, version int) string {
	if version < 150 {
		return filepath.Join(arduinoRoot, "hardware", "arduino", "boards.txt")
	}
	return filepath.Join(arduinoRoot, "hardware", "arduino", "avr", "boards.txt")
}

// Load parses the boards.txt of the Arduino installation at arduinoRoot.
func Load(ctx context.Context, arduinoRoot string, version int) (*TextDatabase, error) {
	path := Path(arduinoRoot, version)
	ctxlog.FromContext(ctx).Debug("Loading board database.", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening board database: %w", err)
	}
	defer f.Close()

	db, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return db, nil
}

// Parse reads boards.txt formatted data. Blank lines and lines starting with
// '#' are ignored; every other line must be "<board>.<property>=<value>".
func Parse(r io.Reader) (*TextDatabase, error) {
	db := &TextDatabase{boards: make(map[string]map[string]string)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: missing '=' in %q", lineNo, line)
		}
		board, property, ok := strings.Cut(key, ".")
		if !ok || board == "" || property == "" {
			return nil, fmt.Errorf("line %d: malformed key %q", lineNo, key)
		}

		props, exists := db.boards[board]
		if !exists {
			props = make(map[string]string)
			db.boards[board] = props
		}
		props[property] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return db, nil
}

// requiredProperties must all be present for an entry to count as a board.
var requiredProperties = []string{"build.mcu", "build.f_cpu", "build.variant"}

// Lookup returns the profile of the board with the given short name.
func (d *TextDatabase) Lookup(id string) (*Profile, error) {
	props, ok := d.boards[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", faults.ErrUnknownBoard, id)
	}
	// Entries such as "menu.cpu=Processor" share the key syntax but are not
	// boards; a board must carry everything its compiler flags need.
	for _, required := range requiredProperties {
		if props[required] == "" {
			return nil, fmt.Errorf("%w: %q has no %s", faults.ErrUnknownBoard, id, required)
		}
	}
	return &Profile{
		ID:      id,
		Name:    props["name"],
		MCU:     props["build.mcu"],
		FCPU:    props["build.f_cpu"],
		Variant: props["build.variant"],
	}, nil
}

// Property returns a raw board property such as "build.f_cpu".
func (d *TextDatabase) Property(id, property string) (string, error) {
	props, ok := d.boards[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", faults.ErrUnknownBoard, id)
	}
	value, ok := props[property]
	if !ok {
		return "", fmt.Errorf("board %q has no property %q", id, property)
	}
	return value, nil
}

// List returns every board that has a display name and resolves with
// Lookup, ordered by short name without regard to case.
func (d *TextDatabase) List() []*Profile {
	var profiles []*Profile
	for id, props := range d.boards {
		if _, ok := props["name"]; !ok {
			continue
		}
		p, err := d.Lookup(id)
		if err != nil {
			continue
		}
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		li, lj := strings.ToLower(profiles[i].ID), strings.ToLower(profiles[j].ID)
		if li == lj {
			return profiles[i].ID < profiles[j].ID
		}
		return li < lj
	})
	return profiles
}
