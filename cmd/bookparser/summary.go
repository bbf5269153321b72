package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aluiziolira/go-book-parser/models"
	"github.com/aluiziolira/go-book-parser/parser"
)

var (
	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
	summaryTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	summaryLabel = lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("245"))
	summaryWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func renderSummary(result *models.RunResult, paths []string) string {
	lines := []string{summaryTitle.Render("Parse complete")}
	row := func(label, value string) {
		lines = append(lines, summaryLabel.Render(label)+value)
	}

	row("Items:", result.Summary())
	row("Page errors:", fmt.Sprintf("%d", result.PageErrors))
	row("Item errors:", fmt.Sprintf("%d", result.ItemErrors))
	if avg, rated := averageRating(result.Records); rated > 0 {
		row("Avg rating:", fmt.Sprintf("%.2f (%d rated)", avg, rated))
	}
	row("Duration:", result.Duration().String())

	if len(paths) == 0 {
		lines = append(lines, summaryWarn.Render("No data to export"))
	} else {
		row("Output:", strings.Join(paths, ", "))
	}
	if len(result.FailedURLs) > 0 {
		row("Failed URLs:", strings.Join(result.FailedURLs, ", "))
	}

	return summaryBox.Render(strings.Join(lines, "\n"))
}

// averageRating ignores records without a recognised rating word.
func averageRating(records []models.BookRecord) (float64, int) {
	total, rated := 0, 0
	for _, r := range records {
		if n := parser.RatingToNumeric(r.Rating); n > 0 {
			total += n
			rated++
		}
	}
	if rated == 0 {
		return 0, 0
	}
	return float64(total) / float64(rated), rated
}
