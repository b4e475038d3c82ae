package tools

import (
	"fmt"
	"strings"
)

// Direction is a validated movement token.
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// ParseDirection normalizes case-insensitively to one of the four tokens.
// Anything else is an explicit error, never a silent default.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	default:
		return "", fmt.Errorf("invalid direction %q (want up, down, left or right)", s)
	}
}
