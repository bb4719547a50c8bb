// Package search ranks prompt metadata against a launcher query.
package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/atomicstack/tmux-prompts/internal/model"
)

const (
	nameWeight        = 3.0
	descriptionWeight = 2.0
	folderWeight      = 1.0
	prefixBonus       = 10.0
	containsBonus     = 2.0
)

// Prompts returns the prompts matching query, best first. An empty query
// returns every prompt in recency order.
func Prompts(prompts []model.PromptMetadata, query string) []model.PromptMetadata {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return ByRecency(prompts)
	}
	type scored struct {
		score float64
		meta  model.PromptMetadata
	}
	matches := make([]scored, 0, len(prompts))
	for _, p := range prompts {
		if s := Score(p, trimmed); s > 0 {
			matches = append(matches, scored{score: s, meta: p})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	out := make([]model.PromptMetadata, len(matches))
	for i, m := range matches {
		out[i] = m.meta
	}
	return out
}

// Score rates how well p matches query; zero means no match.
func Score(p model.PromptMetadata, query string) float64 {
	best := fieldScore(p.Name, query) * nameWeight
	if s := fieldScore(p.Description, query) * descriptionWeight; s > best {
		best = s
	}
	if s := fieldScore(p.Folder, query) * folderWeight; s > best {
		best = s
	}
	if best <= 0 {
		return 0
	}
	if strings.HasPrefix(strings.ToLower(p.Name), strings.ToLower(query)) {
		best += prefixBonus
	}
	return best
}

// fieldScore maps the fuzzysearch distance onto (0, 1], with a bonus for a
// contiguous match.
func fieldScore(text, query string) float64 {
	if text == "" {
		return 0
	}
	distance := fuzzy.RankMatchNormalizedFold(query, text)
	if distance < 0 {
		return 0
	}
	score := 1.0 / float64(1+distance)
	if strings.Contains(strings.ToLower(text), strings.ToLower(query)) {
		score += containsBonus
	}
	return score
}

// ByRecency orders by last use, most recent first; never-used prompts follow,
// ordered by last update.
func ByRecency(prompts []model.PromptMetadata) []model.PromptMetadata {
	out := make([]model.PromptMetadata, len(prompts))
	copy(out, prompts)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.LastUsed != nil && b.LastUsed != nil:
			return a.LastUsed.After(*b.LastUsed)
		case a.LastUsed != nil:
			return true
		case b.LastUsed != nil:
			return false
		default:
			return a.Updated.After(b.Updated)
		}
	})
	return out
}
