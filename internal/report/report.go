// Package report prints a styled summary of a sync pass.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/kbsite/internal/engine"
)

const (
	colorPrimary = "#7D56F4"
	colorSuccess = "#04B575"
	colorInfo    = "#626262"
	colorBorder  = "#874BFD"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 2)
)

// Summary renders the pass counts and the per-category breakdown.
func Summary(res *engine.Result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sync complete"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s  %s %s  %s %s\n",
		infoStyle.Render("new"), countStyle.Render(fmt.Sprint(res.New)),
		infoStyle.Render("updated"), countStyle.Render(fmt.Sprint(res.Updated)),
		infoStyle.Render("skipped"), countStyle.Render(fmt.Sprint(res.Skipped)))
	fmt.Fprintf(&b, "%s %s", infoStyle.Render("total"), countStyle.Render(fmt.Sprint(res.Total())))
	for _, bucket := range res.Buckets {
		fmt.Fprintf(&b, "\n  %s %d", bucket.Category.Display(), len(bucket.Articles))
	}
	return boxStyle.Render(b.String())
}

// Write prints the summary followed by a newline.
func Write(w io.Writer, res *engine.Result) error {
	_, err := fmt.Fprintln(w, Summary(res))
	return err
}
