package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Len(t, c.Products(), 6)

	name, err := c.CanonicalProduct("nsw-selective")
	require.NoError(t, err)
	assert.Equal(t, "NSW Selective Entry (Year 7 Entry)", name)

	_, err = c.CanonicalProduct("NSW Selective Entry (Year 7 Entry)")
	assert.ErrorIs(t, err, ErrUnknownProduct, "no identity fallback")
}

func TestTimeLimitSharedAcrossDiagnosticAndPractice(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	diag, err := c.TimeLimit("vic-selective", "Writing", model.ModeDiagnostic)
	require.NoError(t, err)
	practice, err := c.TimeLimit("vic-selective", "writing ", model.PracticeMode(2))
	require.NoError(t, err)
	assert.Equal(t, diag, practice)
	assert.Equal(t, 40*60, diag.Seconds)
	require.NotNil(t, diag.SecondsPtr())

	drill, err := c.TimeLimit("vic-selective", "Writing", model.ModeDrill)
	require.NoError(t, err)
	assert.True(t, drill.Unlimited)
	assert.Nil(t, drill.SecondsPtr())
}

func TestTimeLimitUnknownPair(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	_, err = c.TimeLimit("vic-selective", "Thinking Skills", model.ModeDiagnostic)
	assert.ErrorIs(t, err, ErrUnknownSection)
	_, err = c.TimeLimit("unknown", "Writing", model.ModeDiagnostic)
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestWritingMaxPoints(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	pts, err := c.WritingMaxPoints("vic-selective")
	require.NoError(t, err)
	assert.Equal(t, 30, pts)
}

func TestNewValidates(t *testing.T) {
	valid := Product{ID: "p", Name: "P", WritingMaxPoints: 10, Sections: []Section{{Name: "S", Minutes: 5}}}

	cases := map[string][]Product{
		"empty":             nil,
		"duplicate id":      {valid, valid},
		"no name":           {{ID: "p", WritingMaxPoints: 10, Sections: valid.Sections}},
		"zero max points":   {{ID: "p", Name: "P", Sections: valid.Sections}},
		"zero minutes":      {{ID: "p", Name: "P", WritingMaxPoints: 10, Sections: []Section{{Name: "S"}}}},
		"duplicate section": {{ID: "p", Name: "P", WritingMaxPoints: 10, Sections: []Section{{Name: "S", Minutes: 1}, {Name: " s", Minutes: 2}}}},
	}
	for name, products := range cases {
		_, err := New(products)
		assert.Error(t, err, name)
	}

	_, err := New([]Product{valid})
	assert.NoError(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
products:
  - id: prod_sel_y7
    name: Year 7 Selective Entry
    writing_max_points: 30
    sections:
      - name: Reading
        minutes: 40
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	alloc, err := c.TimeLimit("prod_sel_y7", "Reading", model.PracticeMode(1))
	require.NoError(t, err)
	assert.Equal(t, 2400, alloc.Seconds)
}
