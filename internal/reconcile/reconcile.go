// Package reconcile rebuilds selected-option indices from stored answers.
//
// Stored answers come from several historical formats: raw indices, single
// letters, option text with or without a letter prefix, and text with mangled
// case or whitespace. Match applies a fixed cascade and the first step that
// matches wins.
package reconcile

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type Step int

const (
	StepNone Step = iota
	StepNumeric
	StepLetter
	StepExact
	StepTrimmed
	StepCaseInsensitive
	StepStrippedPrefix
	StepSynthesizedPrefix
)

func (s Step) String() string {
	switch s {
	case StepNumeric:
		return "numeric"
	case StepLetter:
		return "letter"
	case StepExact:
		return "exact"
	case StepTrimmed:
		return "trimmed"
	case StepCaseInsensitive:
		return "case-insensitive"
	case StepStrippedPrefix:
		return "stripped-prefix"
	case StepSynthesizedPrefix:
		return "synthesized-prefix"
	default:
		return "none"
	}
}

var (
	letterRe = regexp.MustCompile(`^[A-D]$`)
	prefixRe = regexp.MustCompile(`^\(?[A-Ea-e][\)\.:]\s*`)
)

// prefixStyles are the letter prefixes option text has been stored with.
var prefixStyles = []string{"%c) ", "%c. ", "%c: ", "(%c) ", "%c)", "%c."}

// Match resolves a stored answer to an option index. It returns -1 and
// StepNone when nothing matches.
func Match(stored any, options []string) (int, Step) {
	if len(options) == 0 || stored == nil {
		return -1, StepNone
	}
	if idx, ok := numericIndex(stored); ok {
		if idx >= 0 && idx < len(options) {
			return idx, StepNumeric
		}
		return -1, StepNone
	}
	s, ok := stored.(string)
	if !ok {
		return -1, StepNone
	}

	if letterRe.MatchString(s) {
		if idx := int(s[0] - 'A'); idx < len(options) {
			return idx, StepLetter
		}
	}

	if idx := find(options, func(opt string) bool { return opt == s }); idx >= 0 {
		return idx, StepExact
	}
	trimmed := strings.TrimSpace(s)
	if idx := find(options, func(opt string) bool { return strings.TrimSpace(opt) == trimmed }); idx >= 0 {
		return idx, StepTrimmed
	}
	if idx := find(options, func(opt string) bool { return strings.EqualFold(strings.TrimSpace(opt), trimmed) }); idx >= 0 {
		return idx, StepCaseInsensitive
	}

	// Prefixes are only considered from here on; option text is compared
	// with its own prefix removed as well.
	bare := make([]string, len(options))
	for i, opt := range options {
		bare[i] = StripPrefix(opt)
	}
	stripped := StripPrefix(trimmed)
	if idx := find(bare, func(opt string) bool { return strings.EqualFold(opt, stripped) }); idx >= 0 {
		return idx, StepStrippedPrefix
	}
	for i, b := range bare {
		letter := rune('A' + i)
		for _, style := range prefixStyles {
			if strings.EqualFold(fmt.Sprintf(style, letter)+strings.TrimSpace(b), trimmed) {
				return i, StepSynthesizedPrefix
			}
		}
	}
	return -1, StepNone
}

// StripPrefix removes a leading letter prefix such as "A) " or "(b). ".
func StripPrefix(s string) string {
	return strings.TrimSpace(prefixRe.ReplaceAllString(strings.TrimSpace(s), ""))
}

func find(options []string, eq func(string) bool) int {
	for i := range options {
		if eq(options[i]) {
			return i
		}
	}
	return -1
}

func numericIndex(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return -1, true
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return -1, true
		}
		return int(i), true
	}
	return 0, false
}

// Mismatch describes a stored answer that could not be resolved.
type Mismatch struct {
	Key    string
	Stored any
	Reason string
}

// Rehydrate resolves every stored answer against the option lists of the
// session's questions, indexed by position. Unresolvable entries are
// reported and left unanswered.
func Rehydrate(stored map[string]any, options [][]string) (map[int]int, []Mismatch) {
	answers := make(map[int]int, len(stored))
	var mismatches []Mismatch

	keys := make([]string, 0, len(stored))
	for k := range stored {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := stored[key]
		pos, err := strconv.Atoi(key)
		if err != nil || pos < 0 || pos >= len(options) {
			mismatches = append(mismatches, Mismatch{Key: key, Stored: value, Reason: "position out of range"})
			continue
		}
		if len(options[pos]) == 0 {
			mismatches = append(mismatches, Mismatch{Key: key, Stored: value, Reason: "question has no options"})
			continue
		}
		idx, step := Match(value, options[pos])
		if step == StepNone {
			mismatches = append(mismatches, Mismatch{Key: key, Stored: value, Reason: "no matching option"})
			continue
		}
		answers[pos] = idx
	}
	return answers, mismatches
}

// Encode converts in-memory indices to the stored option-text format.
func Encode(answers map[int]int, options [][]string) map[string]any {
	out := make(map[string]any, len(answers))
	for pos, idx := range answers {
		if pos < 0 || pos >= len(options) || idx < 0 || idx >= len(options[pos]) {
			continue
		}
		out[strconv.Itoa(pos)] = options[pos][idx]
	}
	return out
}
