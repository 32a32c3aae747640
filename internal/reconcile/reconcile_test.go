package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

var cities = []string{"A) Paris", "B) Lyon", "C) Nice", "D) Lille"}

func TestMatchCascade(t *testing.T) {
	cases := []struct {
		name   string
		stored any
		idx    int
		step   Step
	}{
		{"json number", float64(2), 2, StepNumeric},
		{"int", 3, 3, StepNumeric},
		{"json.Number", json.Number("1"), 1, StepNumeric},
		{"letter", "A", 0, StepLetter},
		{"exact with prefix", "C) Nice", 2, StepExact},
		{"bare text against prefixed option", "Lyon", 1, StepStrippedPrefix},
		{"trimmed with prefix", "  D) Lille ", 3, StepTrimmed},
		{"case and whitespace with prefix", " a) paris", 0, StepCaseInsensitive},
		{"bare text with mangled case", " paris", 0, StepStrippedPrefix},
		{"stored prefix in another style", "b. lyon", 1, StepStrippedPrefix},
		{"unknown prefix letter", "Z) nothing", -1, StepNone},
		{"numeric out of range", float64(7), -1, StepNone},
		{"fractional number", 1.5, -1, StepNone},
		{"lowercase letter is text", "a", -1, StepNone},
		{"nil", nil, -1, StepNone},
		{"unsupported type", true, -1, StepNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			idx, step := Match(tc.stored, cities)
			assert.Equal(t, tc.idx, idx)
			assert.Equal(t, tc.step, step)
		})
	}
}

func TestMatchSynthesizesPrefixOntoBareOptions(t *testing.T) {
	bare := []string{"Paris", "Lyon", "Nice"}
	idx, step := Match("(C) nice", bare)
	assert.Equal(t, 2, idx)
	assert.Equal(t, StepStrippedPrefix, step)

	idx, step = Match("B)Lyon", bare)
	assert.Equal(t, 1, idx)
	assert.Equal(t, StepStrippedPrefix, step)

	six := []string{"one", "two", "three", "four", "five", "six"}
	idx, step = Match("F) Six", six)
	assert.Equal(t, 5, idx)
	assert.Equal(t, StepSynthesizedPrefix, step)

	idx, step = Match("G) seven", six)
	assert.Equal(t, -1, idx)
	assert.Equal(t, StepNone, step)
}

func TestEarlyStepsCompareOptionTextOnly(t *testing.T) {
	options := []string{"A) Yes", "Yes"}
	idx, step := Match("Yes", options)
	assert.Equal(t, 1, idx)
	assert.Equal(t, StepExact, step)

	idx, step = Match(" yes ", options)
	assert.Equal(t, 1, idx)
	assert.Equal(t, StepCaseInsensitive, step)

	bare := []string{"Paris", "Lyon"}
	idx, step = Match(" Lyon", bare)
	assert.Equal(t, 1, idx)
	assert.Equal(t, StepTrimmed, step)

	idx, step = Match("b) LYON", []string{"A) Yes", "B) Lyon"})
	assert.Equal(t, 1, idx)
	assert.Equal(t, StepStrippedPrefix, step)
}

func TestLetterBeyondOptionsFallsThrough(t *testing.T) {
	idx, step := Match("D", []string{"A", "B", "D"})
	assert.Equal(t, 2, idx)
	assert.Equal(t, StepExact, step)
}

func TestRehydrate(t *testing.T) {
	options := [][]string{cities, nil, cities, cities}
	stored := map[string]any{
		"0":   "A",
		"1":   "some essay",
		"2":   "Z) nothing",
		"3":   " paris",
		"9":   "Lyon",
		"bad": "Lyon",
	}
	answers, mismatches := Rehydrate(stored, options)
	assert.Equal(t, map[int]int{0: 0, 3: 0}, answers)
	assert.Len(t, mismatches, 4)
	reasons := map[string]string{}
	for _, m := range mismatches {
		reasons[m.Key] = m.Reason
	}
	assert.Equal(t, "question has no options", reasons["1"])
	assert.Equal(t, "no matching option", reasons["2"])
	assert.Equal(t, "position out of range", reasons["9"])
	assert.Equal(t, "position out of range", reasons["bad"])
}

func TestEncodeRoundTrip(t *testing.T) {
	options := [][]string{cities, {"Yes", "No"}}
	encoded := Encode(map[int]int{0: 1, 1: 0, 5: 0}, options)
	assert.Equal(t, map[string]any{"0": "B) Lyon", "1": "Yes"}, encoded)

	answers, mismatches := Rehydrate(encoded, options)
	assert.Empty(t, mismatches)
	assert.Equal(t, map[int]int{0: 1, 1: 0}, answers)
}
