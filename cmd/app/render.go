package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/starford/snapcurator/internal/models"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

func renderHeading(w io.Writer, text string) {
	fmt.Fprintln(w, headingStyle.Render(text))
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit prints v as JSON in json mode, otherwise calls text.
func (s *session) emit(v any, text func(w io.Writer)) error {
	if s.json {
		return renderJSON(s.out, v)
	}
	text(s.out)
	return nil
}

func snapRows(snaps []models.Snap) [][]string {
	rows := make([][]string, 0, len(snaps))
	for i, sn := range snaps {
		rows = append(rows, []string{fmt.Sprint(i + 1), sn.Name, sn.Title, sn.Publisher, sn.SnapID})
	}
	return rows
}

var snapHeaders = []string{"#", "Name", "Title", "Publisher", "Snap ID"}

func featuredRows(snaps []models.FeaturedSnap) [][]string {
	rows := make([][]string, 0, len(snaps))
	for i, sn := range snaps {
		rows = append(rows, []string{fmt.Sprint(i + 1), sn.PackageName, sn.Title, sn.DeveloperName, sn.SnapID})
	}
	return rows
}

var featuredHeaders = []string{"#", "Package", "Title", "Developer", "Snap ID"}

func stepStatus(st models.CollectorStep) string {
	switch {
	case st.Success == nil:
		return "never run"
	case *st.Success:
		return "ok"
	default:
		return "failed"
	}
}
