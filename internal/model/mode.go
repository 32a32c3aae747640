package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is the assessment mode of a session: "diagnostic", "practice-N" or "drill".
type Mode string

type ModeKind string

const (
	ModeKindDiagnostic ModeKind = "diagnostic"
	ModeKindPractice   ModeKind = "practice"
	ModeKindDrill      ModeKind = "drill"
)

const (
	ModeDiagnostic Mode = "diagnostic"
	ModeDrill      Mode = "drill"
)

// PracticeMode returns the mode for the n-th practice test.
func PracticeMode(n int) Mode {
	return Mode(fmt.Sprintf("practice-%d", n))
}

// ParseMode normalises and validates a mode string.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == string(ModeDiagnostic):
		return ModeDiagnostic, nil
	case s == string(ModeDrill):
		return ModeDrill, nil
	case strings.HasPrefix(s, "practice-"):
		n, err := strconv.Atoi(strings.TrimPrefix(s, "practice-"))
		if err != nil || n < 1 {
			return "", fmt.Errorf("invalid practice mode %q", s)
		}
		return PracticeMode(n), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

func (m Mode) Kind() ModeKind {
	switch {
	case m == ModeDrill:
		return ModeKindDrill
	case strings.HasPrefix(string(m), "practice-"):
		return ModeKindPractice
	default:
		return ModeKindDiagnostic
	}
}

// Timed reports whether sessions in this mode run a countdown.
func (m Mode) Timed() bool {
	return m.Kind() != ModeKindDrill
}
