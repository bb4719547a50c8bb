package store

import (
	"github.com/atomicstack/tmux-prompts/internal/model"
)

var seedPrompts = []model.Prompt{
	{
		PromptMetadata: model.PromptMetadata{
			Name:        "Summarize",
			Folder:      "Writing",
			Description: "Summarize the content",
		},
		Content: `# Task

Summarize the text below. Keep the original terminology.

## Output

1. Main ideas, three to eight bullet points.
2. Key supporting details, each tied to a main idea.
3. Exact quotes that define a concept or carry a warning.
4. Stated facts, in the order they appear.

Do not add interpretation that is not in the source.
`,
	},
	{
		PromptMetadata: model.PromptMetadata{
			Name:        "Explain this code",
			Folder:      "Coding",
			Description: "Walk through what a code snippet does",
		},
		Content: `Explain what the following code does, step by step.
Point out any edge cases it does not handle and any bugs you notice.

` + "```" + `
<paste code here>
` + "```" + `
`,
	},
}

// SeedIfNeeded adds the example prompts to an empty, never-seeded catalogue.
// It reports whether any prompt was created.
func (s *Store) SeedIfNeeded() (bool, error) {
	idx, err := s.LoadIndex()
	if err != nil {
		return false, err
	}
	if idx.Seeded {
		return false, nil
	}
	created := false
	if len(idx.Prompts) == 0 {
		for _, p := range seedPrompts {
			if _, err := s.SavePrompt(p); err != nil {
				return created, err
			}
			created = true
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err = s.loadIndex()
	if err != nil {
		return created, err
	}
	idx.Seeded = true
	return created, s.saveIndex(idx)
}
