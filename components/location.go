package components

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Location is a 1-based (row, column) island coordinate.
// In YAML it is written as a two-element sequence: [row, col].
type Location struct {
	Row, Col int
}

// Loc is shorthand for Location{Row: row, Col: col}.
func Loc(row, col int) Location {
	return Location{Row: row, Col: col}
}

// Offset returns the location moved by (dr, dc).
func (l Location) Offset(dr, dc int) Location {
	return Location{Row: l.Row + dr, Col: l.Col + dc}
}

// String formats the location as (row, col).
func (l Location) String() string {
	return fmt.Sprintf("(%d, %d)", l.Row, l.Col)
}

// Neighbours lists the four orthogonal offsets: north, south, west, east.
var Neighbours = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// UnmarshalYAML accepts [row, col] or a {row, col} mapping.
func (l *Location) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var pair []int
		if err := node.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("line %d: location needs [row, col], got %d values", node.Line, len(pair))
		}
		l.Row, l.Col = pair[0], pair[1]
		return nil
	case yaml.MappingNode:
		var m struct {
			Row int `yaml:"row"`
			Col int `yaml:"col"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		l.Row, l.Col = m.Row, m.Col
		return nil
	}
	return fmt.Errorf("line %d: location must be [row, col]", node.Line)
}

// MarshalYAML writes the location as [row, col].
func (l Location) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []int{l.Row, l.Col} {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(v)})
	}
	return node, nil
}
