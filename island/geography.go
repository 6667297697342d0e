package island

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pthm-cable/biosim/components"
)

// Map errors.
var (
	ErrEmptyMap          = errors.New("map has no rows")
	ErrMapNotRectangular = errors.New("map is not rectangular")
	ErrMapBorder         = errors.New("map border must be water")
)

// ParseMap turns a multi-line terrain string into rows of terrain, one rune
// per cell. Surrounding whitespace on each line and blank lines are ignored.
func ParseMap(geography string) ([][]components.Terrain, error) {
	var lines []string
	for _, line := range strings.Split(geography, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, ErrEmptyMap
	}

	width := utf8.RuneCountInString(lines[0])
	grid := make([][]components.Terrain, len(lines))
	for r, line := range lines {
		if n := utf8.RuneCountInString(line); n != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, row 1 has %d", ErrMapNotRectangular, r+1, n, width)
		}
		grid[r] = make([]components.Terrain, 0, width)
		c := 0
		for _, code := range line {
			c++
			t, err := components.TerrainFromCode(code)
			if err != nil {
				return nil, fmt.Errorf("map %s: %w", components.Loc(r+1, c), err)
			}
			grid[r] = append(grid[r], t)
		}
	}

	last, lastCol := len(grid)-1, width-1
	for r, row := range grid {
		for c, t := range row {
			onBorder := r == 0 || r == last || c == 0 || c == lastCol
			if onBorder && t != components.Water {
				return nil, fmt.Errorf("%w: %s is %s", ErrMapBorder, components.Loc(r+1, c+1), t)
			}
		}
	}
	return grid, nil
}
