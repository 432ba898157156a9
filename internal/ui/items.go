package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/fretless/tabstash/internal/formatter"
	"github.com/fretless/tabstash/internal/models"
)

var _ list.Item = tabItem{}

// tabItem wraps [models.Tab] to implement [list.Item].
//
// The collapsed form shows the escaped title on the first line and
// "Artist • Tuning" on the second; list-internal filtering stays disabled
// because the search filter owns which items are present at all.
type tabItem struct {
	tab models.Tab
}

func (i tabItem) FilterValue() string { return i.tab.Title }
func (i tabItem) Title() string       { return formatter.Escape(i.tab.Title) }
func (i tabItem) Description() string {
	desc := formatter.Escape(i.tab.Artist)
	if i.tab.Tuning != "" {
		desc = fmt.Sprintf("%s • %s", desc, formatter.Escape(i.tab.Tuning))
	}
	return desc
}
