package game

import "math/rand"

// Game modes. They differ only in round duration, except chooser rotation
// (a player picks the letter) and survival (lowest scorers are eliminated).
const (
	ModeClassic  = "classic"
	ModeSpeed    = "speed"
	ModeChooser  = "chooser_rotation"
	ModeStakes   = "stakes"
	ModeSurvival = "survival"
)

var modeRoundDuration = map[string]int{
	ModeClassic:  90,
	ModeSpeed:    60,
	ModeChooser:  90,
	ModeStakes:   90,
	ModeSurvival: 90,
}

const defaultTheme = "classic"

var themeCategories = map[string][]string{
	"classic":   {"Name", "Animal", "Fruit", "Object", "Color", "City", "Profession", "Brand"},
	"fun":       {"Cartoon character", "Weird food", "Difficult word", "Dog name", "Surname", "Drink", "Country", "Sport"},
	"geography": {"Country", "City", "River", "Mountain", "Island", "Capital", "State", "Continent"},
	"culture":   {"Movie", "Series", "Song", "Artist", "Book", "Game", "YouTuber", "Brand"},
}

const (
	minPlayers        = 2
	maxPlayersCeiling = 16
	defaultCapacity   = 8
	defaultRounds     = 5
)

type RoomConfig struct {
	Name          string
	Password      string
	Theme         string
	Categories    []string
	Mode          string
	MaxRounds     int
	MaxPlayers    int
	RoundDuration int
}

// NormalizeRoomConfig applies defaults and clamps to a raw create request:
// capacity to [2,16] (default 8), rounds to a positive count (default 5),
// unknown modes and themes to classic, categories from the custom list when
// given, else the theme template.
func NormalizeRoomConfig(p RoomCreatePayload) RoomConfig {
	cfg := RoomConfig{
		Name:       p.Name,
		Password:   p.Password,
		Mode:       p.Mode,
		MaxRounds:  p.MaxRounds,
		MaxPlayers: p.MaxPlayers,
	}

	if cfg.Name == "" {
		cfg.Name = "New Room"
	}
	if _, known := modeRoundDuration[cfg.Mode]; !known {
		cfg.Mode = ModeClassic
	}
	cfg.RoundDuration = modeRoundDuration[cfg.Mode]

	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = defaultRounds
	}
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = defaultCapacity
	}
	if cfg.MaxPlayers < minPlayers {
		cfg.MaxPlayers = minPlayers
	}
	if cfg.MaxPlayers > maxPlayersCeiling {
		cfg.MaxPlayers = maxPlayersCeiling
	}

	if len(p.Categories) > 0 {
		cfg.Categories = append([]string(nil), p.Categories...)
		cfg.Theme = p.Theme
		if cfg.Theme == "" {
			cfg.Theme = "custom"
		}
		return cfg
	}

	template, known := themeCategories[p.Theme]
	if !known {
		cfg.Theme = defaultTheme
		template = themeCategories[defaultTheme]
	} else {
		cfg.Theme = p.Theme
	}
	cfg.Categories = append([]string(nil), template...)
	return cfg
}

type randomLetterDrawer struct{}

func (randomLetterDrawer) Draw() string {
	return string(rune('A' + rand.Intn(26)))
}
