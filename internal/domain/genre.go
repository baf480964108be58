package domain

import "strings"

// DefaultGenre is the genre shown when none is configured
const DefaultGenre = "action"

// Genres lists the genre slugs the catalog can be browsed by, in picker order.
var Genres = []string{
	"action", "indie", "adventure", "rpg", "strategy", "shooter",
	"casual", "simulation", "puzzle", "arcade", "platformer",
	"racing", "sports", "fighting", "family",
}

// IsKnownGenre reports whether slug is one of Genres
func IsKnownGenre(slug string) bool {
	for _, g := range Genres {
		if g == slug {
			return true
		}
	}
	return false
}

// GenreTitle returns a display title for a genre slug ("rpg" -> "RPG", "action" -> "Action")
func GenreTitle(slug string) string {
	if slug == "rpg" {
		return "RPG"
	}
	if slug == "" {
		return ""
	}
	return strings.ToUpper(slug[:1]) + slug[1:]
}
