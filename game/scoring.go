package game

import "strings"

// Points per answer. An answer shared with other players is worth half a
// unique one; anything not starting with the round letter is worth nothing.
const (
	pointsInvalid = 0
	pointsShared  = 5
	pointsUnique  = 10
)

type RoundScore struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"byCategory"`
}

// answerValid reports whether a raw answer counts for the round letter:
// non-empty after trimming and first character matches case-insensitively.
// No further normalization (accents, plurals, synonyms) is applied.
func answerValid(raw, letter string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || letter == "" {
		return false
	}
	return firstRuneUpper(trimmed) == firstRuneUpper(letter)
}

func dedupKey(category, raw string) string {
	return category + ":" + strings.ToLower(strings.TrimSpace(raw))
}

// ScoreRound computes the per-player, per-category breakdown for one round.
// Pure: answers maps player key -> category -> raw text, and the result keys
// mirror the input keys. Players sharing a (category, normalized text) pair
// each earn the shared value; sole occupants earn the unique value.
func ScoreRound(letter string, categories []string, answers map[string]map[string]string) map[string]RoundScore {
	occupants := make(map[string]int)
	for _, playerAnswers := range answers {
		for category, raw := range playerAnswers {
			if answerValid(raw, letter) {
				occupants[dedupKey(category, raw)]++
			}
		}
	}

	scores := make(map[string]RoundScore, len(answers))
	for player, playerAnswers := range answers {
		score := RoundScore{ByCategory: make(map[string]int, len(categories))}
		for _, category := range categories {
			points := pointsInvalid
			if raw, ok := playerAnswers[category]; ok && answerValid(raw, letter) {
				if occupants[dedupKey(category, raw)] == 1 {
					points = pointsUnique
				} else {
					points = pointsShared
				}
			}
			score.ByCategory[category] = points
			score.Total += points
		}
		scores[player] = score
	}
	return scores
}
