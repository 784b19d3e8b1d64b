package domain

import (
	"fmt"
	"strings"
)

// Scale is an ordered list of severities, least severe first
type Scale []string

// DefaultScale is used when no scale is configured
var DefaultScale = Scale{"trace", "debug", "info", "warn", "error", "fatal"}

// Index returns the position of level in the scale (case-insensitive), or -1
func (s Scale) Index(level string) int {
	for i, l := range s {
		if strings.EqualFold(l, level) {
			return i
		}
	}
	return -1
}

// Contains reports whether level is part of the scale
func (s Scale) Contains(level string) bool {
	return s.Index(level) >= 0
}

// Direction selects which part of a scale a severity query keeps
type Direction string

const (
	Equal         Direction = "equal"
	EqualAndAbove Direction = "equal_and_above"
	EqualAndBelow Direction = "equal_and_below"
)

// ParseDirection converts a string to a Direction. Dashes and case are ignored.
func ParseDirection(s string) (Direction, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	switch Direction(norm) {
	case "", Equal:
		return Equal, nil
	case EqualAndAbove, "above":
		return EqualAndAbove, nil
	case EqualAndBelow, "below":
		return EqualAndBelow, nil
	}
	return "", fmt.Errorf("unknown severity direction %q (use equal, equal_and_above, equal_and_below)", s)
}

// UnknownSeverityError is returned when a level is not part of the scale
type UnknownSeverityError struct {
	Level string
	Scale Scale
}

func (e *UnknownSeverityError) Error() string {
	return fmt.Sprintf("unknown severity %q (scale: %s)", e.Level, strings.Join(e.Scale, ", "))
}

// Select returns the severities a query for level in direction accepts
func (s Scale) Select(level string, dir Direction) (Scale, error) {
	idx := s.Index(level)
	if idx < 0 {
		return nil, &UnknownSeverityError{Level: level, Scale: s}
	}
	switch dir {
	case EqualAndAbove:
		return s[idx:], nil
	case EqualAndBelow:
		return s[:idx+1], nil
	case Equal, "":
		return s[idx : idx+1], nil
	}
	return nil, fmt.Errorf("unknown severity direction %q", dir)
}
