package notifier

import (
	"fmt"
	"html"
	"strings"

	"SessionScreener/internal/activation"
	"SessionScreener/internal/catalog"
	"SessionScreener/internal/model"
)

// FormatRun formats a finished screening run into a Telegram message.
func FormatRun(run *model.Run) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Screening</b> | %s\n\n", run.ScreeningDate))
	b.WriteString(fmt.Sprintf("Tickers: %d | Active conditions: %d\n", len(run.Selected), run.Active))
	b.WriteString(fmt.Sprintf("Matched: %d | Rejected: %d | Skipped: %d\n\n",
		len(run.Results), run.Count(model.OutcomeRejected), run.Count(model.OutcomeSkipped)))

	if len(run.Results) == 0 {
		b.WriteString("No matches.")
		return b.String()
	}
	b.WriteString("✅ <b>Matches:</b>\n")
	for _, r := range run.Results {
		b.WriteString(html.EscapeString(r.String()))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatConditions lists the active conditions of a set.
func FormatConditions(cat *catalog.Catalog, set activation.Set) string {
	if set.Len() == 0 {
		return "No active conditions. Every ticker with data passes."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("⚙️ <b>Active conditions</b> (%d)\n\n", set.Len()))
	for _, id := range set.IDs() {
		def, ok := cat.Get(id)
		if !ok {
			continue
		}
		desc := def.Description
		if set.Mode(id) == activation.Inverted {
			desc = fmt.Sprintf("NOT(%s) [%s]", desc, def.Inverse())
		}
		b.WriteString(fmt.Sprintf("%d. %s\n", id, html.EscapeString(desc)))
	}
	return b.String()
}

// FormatError formats a failure for chat.
func FormatError(action string, err error) string {
	return fmt.Sprintf("❌ %s failed: %s", action, html.EscapeString(err.Error()))
}
