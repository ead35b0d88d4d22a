package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // accent color
	Dim     lipgloss.Color // secondary text
	Danger  lipgloss.Color // failure highlights
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Danger:  lipgloss.Color("#ff5f87"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Border lipgloss.Style
	Bad    lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Value:  lipgloss.NewStyle(),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Bad:    lipgloss.NewStyle().Bold(true).Foreground(t.Danger),
	}
}

// Card renders a titled box of label/value rows, for results that
// deserve more weight than a log line (generated keys, match scores).
type Card struct {
	Styles Styles
	Title  string
	Rows   [][2]string
}

// Render returns the framed card as a string.
func (c Card) Render() string {
	labelWidth := 0
	for _, row := range c.Rows {
		if w := lipgloss.Width(row[0]); w > labelWidth {
			labelWidth = w
		}
	}

	var body []string
	for _, row := range c.Rows {
		label := c.Styles.Label.Render(fmt.Sprintf("%-*s", labelWidth, row[0]))
		body = append(body, label+"  "+c.Styles.Value.Render(row[1]))
	}

	inner := strings.Join(body, "\n")
	box := c.Styles.Border.
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	return c.Styles.Title.Render(c.Title) + "\n" + box.Render(inner)
}
