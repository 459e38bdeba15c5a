// Package genre assigns a coarse genre tag from keyword heuristics over
// listing text. Classification is best-effort: the first matching rule wins
// and anything unrecognized falls back to "other".
package genre

import (
	"strings"

	"FreeGameHub/internal/domain"
)

type rule struct {
	genre    domain.Genre
	keywords []string
}

// Rules are ordered: more specific genres come before broader ones so that
// "fps shooter" does not land in action and "tower defense" not in puzzle.
var rules = []rule{
	{domain.GenreShooter, []string{"shooter", "fps", "battle royale"}},
	{domain.GenreRacing, []string{"racing", "drift", "rally", "driving"}},
	{domain.GenreSports, []string{"sports", "fifa", "football", "basketball", "golf", "skate"}},
	{domain.GenreStrategy, []string{"strategy", "tower defense", "rts", "turn-based", "4x"}},
	{domain.GenrePuzzle, []string{"puzzle", "logic", "match-3", "sudoku"}},
	{domain.GenreAction, []string{"action", "combat", "fight", "hack and slash", "beat 'em up"}},
	{domain.GenreRPG, []string{"rpg", "role-playing", "role playing", "adventure", "fantasy", "dungeon"}},
	{domain.GenreIndie, []string{"indie", "pixel", "retro", "roguelike", "roguelite"}},
}

// Detect classifies a listing from its lowercased title and description.
func Detect(title, description string) domain.Genre {
	text := strings.ToLower(title + " " + description)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.genre
			}
		}
	}
	return domain.GenreOther
}
