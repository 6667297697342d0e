// Package components defines the data carried by animals and cells.
package components

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSpecies is returned when a species name is not recognised.
var ErrUnknownSpecies = errors.New("unknown species")

// ErrUnknownTerrain is returned when a terrain name or map code is not recognised.
var ErrUnknownTerrain = errors.New("unknown terrain")

// Species identifies one of the two animal variants.
type Species uint8

const (
	Herbivore Species = iota
	Carnivore

	NumSpecies = 2
)

// SpeciesNames returns the display names for all species.
// The order matches the Species constants.
func SpeciesNames() []string {
	return []string{"Herbivore", "Carnivore"}
}

// AllSpecies lists every species in feeding/procreation order.
func AllSpecies() []Species {
	return []Species{Herbivore, Carnivore}
}

// String returns the display name for a Species.
func (s Species) String() string {
	names := SpeciesNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// ParseSpecies matches a species name case-insensitively.
func ParseSpecies(name string) (Species, error) {
	trimmed := strings.TrimSpace(name)
	for i, n := range SpeciesNames() {
		if strings.EqualFold(trimmed, n) {
			return Species(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
}

// Terrain classifies a landscape cell.
type Terrain uint8

const (
	Water Terrain = iota
	Lowland
	Highland
	Desert

	NumTerrains = 4
)

// terrainInfo is the fixed per-terrain table.
var terrainInfo = [NumTerrains]struct {
	name     string
	code     byte
	passable bool
	fodder   bool
}{
	Water:    {name: "Water", code: 'W', passable: false, fodder: false},
	Lowland:  {name: "Lowland", code: 'L', passable: true, fodder: true},
	Highland: {name: "Highland", code: 'H', passable: true, fodder: true},
	Desert:   {name: "Desert", code: 'D', passable: true, fodder: false},
}

// String returns the display name for a Terrain.
func (t Terrain) String() string {
	if int(t) < NumTerrains {
		return terrainInfo[t].name
	}
	return "Unknown"
}

// Code returns the single-character map code.
func (t Terrain) Code() byte {
	if int(t) < NumTerrains {
		return terrainInfo[t].code
	}
	return '?'
}

// Passable reports whether animals may live on the terrain.
func (t Terrain) Passable() bool {
	return int(t) < NumTerrains && terrainInfo[t].passable
}

// BearsFodder reports whether fodder grows on the terrain.
func (t Terrain) BearsFodder() bool {
	return int(t) < NumTerrains && terrainInfo[t].fodder
}

// TerrainFromCode maps a map character to its terrain.
func TerrainFromCode(code rune) (Terrain, error) {
	for i, info := range terrainInfo {
		if rune(info.code) == code {
			return Terrain(i), nil
		}
	}
	return 0, fmt.Errorf("%w: code %q", ErrUnknownTerrain, code)
}

// ParseTerrain accepts either a map code ("L") or a terrain name ("lowland"),
// case-insensitively.
func ParseTerrain(name string) (Terrain, error) {
	trimmed := strings.TrimSpace(name)
	for i, info := range terrainInfo {
		if strings.EqualFold(trimmed, info.name) || strings.EqualFold(trimmed, string(info.code)) {
			return Terrain(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTerrain, name)
}

// TerrainNames returns the display names for all terrains.
func TerrainNames() []string {
	names := make([]string, NumTerrains)
	for i, info := range terrainInfo {
		names[i] = info.name
	}
	return names
}
