package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/okieraised/points-of-interests/internal/localsearch"
	"github.com/okieraised/points-of-interests/internal/models"
)

// Styles contains the style definitions for the terminal front end
type Styles struct {
	Header      lipgloss.Style
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Highlight   lipgloss.Style
	Selected    lipgloss.Style
	Dim         lipgloss.Style
	Status      lipgloss.Style
	AlertBox    lipgloss.Style
	AlertTitle  lipgloss.Style
	DetailBox   lipgloss.Style
	DetailLabel lipgloss.Style
	Help        lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Title:     lipgloss.NewStyle(),
		Subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Highlight: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
		Dim:       lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		AlertBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1).
			MarginTop(1),
		AlertTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		DetailBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1).
			MarginTop(1),
		DetailLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(10),
		Help:        lipgloss.NewStyle().Faint(true),
	}
}

// renderStyled renders highlighted spans with hl and the rest with base.
func renderStyled(text localsearch.StyledText, base, hl lipgloss.Style) string {
	var b strings.Builder
	for _, span := range text.Spans {
		if span.Highlighted {
			b.WriteString(hl.Render(span.Text))
			continue
		}
		b.WriteString(base.Render(span.Text))
	}
	return b.String()
}

var categorySymbols = map[models.Category]string{
	models.CategoryAirport:         "✈",
	models.CategoryAmusementPark:   "🎡",
	models.CategoryAquarium:        "🐟",
	models.CategoryBakery:          "🥐",
	models.CategoryBeach:           "🏖",
	models.CategoryBrewery:         "🍺",
	models.CategoryCafe:            "☕",
	models.CategoryCampground:      "⛺",
	models.CategoryCarRental:       "🚗",
	models.CategoryEVCharger:       "🔌",
	models.CategoryGasStation:      "⛽",
	models.CategoryHotel:           "🏨",
	models.CategoryMarina:          "⛵",
	models.CategoryMovieTheater:    "🎬",
	models.CategoryMuseum:          "🏛",
	models.CategoryNationalPark:    "🏞",
	models.CategoryNightlife:       "🍸",
	models.CategoryPark:            "🌳",
	models.CategoryParking:         "🅿",
	models.CategoryPublicTransport: "🚉",
	models.CategoryRestaurant:      "🍴",
	models.CategoryStadium:         "🏟",
	models.CategoryTheater:         "🎭",
	models.CategoryWinery:          "🍷",
	models.CategoryZoo:             "🦁",
}

// categorySymbol returns the glyph shown next to a place, or a pin for unknown categories.
func categorySymbol(c models.Category) string {
	if s, ok := categorySymbols[c]; ok {
		return s
	}
	return "📍"
}
