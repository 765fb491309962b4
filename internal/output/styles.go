package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Every color used by the CLI is named here.
var (
	// ColorCyan is used for identifiable nouns: file paths, package names.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for successful results.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for cached results and warnings.
	ColorYellow = lipgloss.Color("220")

	// ColorBoldRed is used for failures.
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")

	// ColorBlue is used for table headers.
	ColorBlue = lipgloss.Color("12")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns (file paths, package names).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleDim styles structural chrome (prefixes, separators, reasons).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// ruleColors gives each transform rule a stable color.
var ruleColors = map[string]lipgloss.Color{
	"app":                lipgloss.Color("39"),
	"reactNativeModule":  lipgloss.Color("81"),
	"expoModule":         lipgloss.Color("141"),
	"untranspiledModule": lipgloss.Color("214"),
	"passthroughModule":  ColorDimGray,
}

// RuleStyle returns the style for a transform rule name.
func RuleStyle(rule string) lipgloss.Style {
	if c, ok := ruleColors[rule]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return lipgloss.NewStyle()
}

// File status constants.
const (
	StatusTransformed = "transformed"
	StatusCached      = "cached"
	StatusFailed      = "failed"
)

// StatusStyle returns the style for a file status. Unknown statuses are
// unstyled.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusTransformed:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusCached:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minPathColumnWidth keeps rule and status columns aligned for short paths.
const minPathColumnWidth = 48

// FormatFileLine renders a file path followed by its rule and status.
//
// Format: f:<path>  <rule> <status>
func FormatFileLine(path, rule, status string) string {
	padding := minPathColumnWidth - len(path)
	if padding < 2 {
		padding = 2
	}
	return StyleDim.Render("f:") + StyleNoun.Render(path) + strings.Repeat(" ", padding) +
		RuleStyle(rule).Render(rule) + " " + StatusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message.
func FormatCheckmark(msg string) string {
	return lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔") + " " + msg
}
