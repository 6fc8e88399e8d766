package gamemap

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ErrInvalidWorld is returned when a world description cannot be turned
// into a map.
var ErrInvalidWorld = errors.New("invalid world description")

// Description is the on-disk YAML form of a world.
type Description struct {
	Name       string                    `yaml:"name"`
	Legend     map[string]string         `yaml:"legend"`
	Rows       []string                  `yaml:"rows"`
	Markers    []MarkerSpec              `yaml:"markers"`
	Characters map[string]TuningOverride `yaml:"characters"`
}

// MarkerSpec places a named marker on tile (X, Y).
type MarkerSpec struct {
	Name string `yaml:"name"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

// TuningOverride replaces selected movement parameters of one character.
// Nil fields keep the roster default.
type TuningOverride struct {
	RoamRadius            *float64 `yaml:"roam_radius"`
	MoveSpeed             *float64 `yaml:"move_speed"`
	PauseChance           *float64 `yaml:"pause_chance"`
	DirectionChangeChance *float64 `yaml:"direction_change_chance"`
}

// Validate rejects values an agent cannot honour: negative radius or
// speed, and chances outside [0, 1].
func (o TuningOverride) Validate() error {
	if o.RoamRadius != nil && *o.RoamRadius < 0 {
		return fmt.Errorf("roam_radius %v is negative", *o.RoamRadius)
	}
	if o.MoveSpeed != nil && *o.MoveSpeed < 0 {
		return fmt.Errorf("move_speed %v is negative", *o.MoveSpeed)
	}
	if o.PauseChance != nil && (*o.PauseChance < 0 || *o.PauseChance > 1) {
		return fmt.Errorf("pause_chance %v is outside [0, 1]", *o.PauseChance)
	}
	if o.DirectionChangeChance != nil && (*o.DirectionChangeChance < 0 || *o.DirectionChangeChance > 1) {
		return fmt.Errorf("direction_change_chance %v is outside [0, 1]", *o.DirectionChangeChance)
	}
	return nil
}

// World is a loaded world: the map plus per-character tuning overrides
// keyed by character id.
type World struct {
	Name      string
	Map       *GameMap
	Overrides map[string]TuningOverride
}

// LoadFile reads and parses the world description at path.
func LoadFile(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world %s: %w", path, err)
	}
	w, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("world %s: %w", path, err)
	}
	return w, nil
}

// Parse decodes a YAML world description and builds its map.
func Parse(data []byte) (*World, error) {
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorld, err)
	}
	m, err := d.Build()
	if err != nil {
		return nil, err
	}
	overrides := d.Characters
	if overrides == nil {
		overrides = map[string]TuningOverride{}
	}
	return &World{Name: d.Name, Map: m, Overrides: overrides}, nil
}

// Build turns the description's rows and markers into a GameMap and checks
// the character overrides.
func (d *Description) Build() (*GameMap, error) {
	if len(d.Rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidWorld)
	}
	legend := make(map[rune]TileKind, len(d.Legend))
	for key, name := range d.Legend {
		r, size := utf8.DecodeRuneInString(key)
		if size == 0 || size != len(key) {
			return nil, fmt.Errorf("%w: legend key %q must be a single character", ErrInvalidWorld, key)
		}
		kind, ok := tileNames[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown tile %q for %q", ErrInvalidWorld, name, key)
		}
		legend[r] = kind
	}

	width := utf8.RuneCountInString(d.Rows[0])
	m := New(width, len(d.Rows))
	for y, row := range d.Rows {
		if n := utf8.RuneCountInString(row); n != width {
			return nil, fmt.Errorf("%w: row %d has %d tiles, want %d", ErrInvalidWorld, y, n, width)
		}
		x := 0
		for _, r := range row {
			kind, ok := legend[r]
			if !ok {
				return nil, fmt.Errorf("%w: row %d: no legend entry for %q", ErrInvalidWorld, y, r)
			}
			m.Set(x, y, MakeTile(kind))
			x++
		}
	}

	for _, mk := range d.Markers {
		if mk.Name == "" {
			return nil, fmt.Errorf("%w: marker at (%d,%d) has no name", ErrInvalidWorld, mk.X, mk.Y)
		}
		if !m.IsWalkable(mk.X, mk.Y) {
			return nil, fmt.Errorf("%w: marker %q at (%d,%d) is not on a walkable tile", ErrInvalidWorld, mk.Name, mk.X, mk.Y)
		}
		m.AddMarker(mk.Name, mk.X, mk.Y)
	}

	for _, id := range slices.Sorted(maps.Keys(d.Characters)) {
		if err := d.Characters[id].Validate(); err != nil {
			return nil, fmt.Errorf("%w: character %q: %v", ErrInvalidWorld, id, err)
		}
	}
	return m, nil
}
