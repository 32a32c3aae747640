package repository

import (
	"fmt"
	"strings"

	"github.com/julz808/educoach-prep-portal-sub001/internal/model"
	"github.com/lib/pq"
	"github.com/spf13/viper"
)

type seedQuestion struct {
	ID           string   `mapstructure:"id"`
	Product      string   `mapstructure:"product"`
	Mode         string   `mapstructure:"mode"`
	Section      string   `mapstructure:"section"`
	Position     int      `mapstructure:"position"`
	Prompt       string   `mapstructure:"prompt"`
	Options      []string `mapstructure:"options"`
	CorrectIndex *int     `mapstructure:"correct_index"`
	Explanation  string   `mapstructure:"explanation"`
	SubSkill     string   `mapstructure:"sub_skill"`
	Difficulty   int      `mapstructure:"difficulty"`
}

// LoadQuestionsFile reads a question bank from a YAML or JSON file with a
// top-level "questions" list.
func LoadQuestionsFile(path string) ([]model.Question, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read questions %s: %w", path, err)
	}
	var file struct {
		Questions []seedQuestion `mapstructure:"questions"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	seen := make(map[string]bool, len(file.Questions))
	out := make([]model.Question, 0, len(file.Questions))
	for i, q := range file.Questions {
		if strings.TrimSpace(q.ID) == "" {
			return nil, fmt.Errorf("question #%d: empty id", i)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("question %q: duplicate id", q.ID)
		}
		seen[q.ID] = true
		mode, err := model.ParseMode(q.Mode)
		if err != nil {
			return nil, fmt.Errorf("question %q: %w", q.ID, err)
		}
		if q.CorrectIndex != nil && (*q.CorrectIndex < 0 || *q.CorrectIndex >= len(q.Options)) {
			return nil, fmt.Errorf("question %q: correct_index out of range", q.ID)
		}
		out = append(out, model.Question{
			ID:           q.ID,
			Product:      q.Product,
			Mode:         string(mode),
			Section:      q.Section,
			Position:     q.Position,
			Prompt:       q.Prompt,
			Options:      pq.StringArray(q.Options),
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
			SubSkill:     q.SubSkill,
			Difficulty:   q.Difficulty,
		})
	}
	return out, nil
}
