package model

import (
	"fmt"
	"strings"
)

// Direction is the wagered price movement for a round.
type Direction string

const (
	DirectionUp   Direction = "BET_UP"
	DirectionDown Direction = "BET_DOWN"
)

// ParseDirection accepts up/down, bull/bear or the BET_* tags.
func ParseDirection(input string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "up", "bull", "bet_up":
		return DirectionUp, nil
	case "down", "bear", "bet_down":
		return DirectionDown, nil
	default:
		return "", fmt.Errorf("invalid direction: %q", input)
	}
}

func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}
