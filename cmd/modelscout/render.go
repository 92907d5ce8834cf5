package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/modelscout/modelscout/internal/engine"
	"github.com/modelscout/modelscout/internal/ranking"
)

const (
	colRank      = 4
	colScore     = 9
	colSize      = 8
	minNameWidth = 12
	maxNameWidth = 36
)

func renderTable(w io.Writer, result *engine.Result, top int) {
	ranked := result.Ranked
	if len(ranked) > top {
		ranked = ranked[:top]
	}

	nameWidth := minNameWidth
	for _, rc := range ranked {
		if n := runewidth.StringWidth(displayName(&rc)); n > nameWidth {
			nameWidth = n
		}
	}
	if nameWidth > maxNameWidth {
		nameWidth = maxNameWidth
	}

	totalWidth := colRank + nameWidth + colScore*3 + colSize + 12

	fmt.Fprintf(w, "%s\n", strings.Repeat("═", totalWidth))             //nolint:errcheck
	fmt.Fprintf(w, " RECOMMENDATIONS\n")                                //nolint:errcheck
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("═", totalWidth))           //nolint:errcheck
	fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s  %s\n",                      //nolint:errcheck
		padRight("#", colRank),
		padRight("Model", nameWidth),
		padRight("Score", colScore),
		padRight("Similar", colScore),
		padRight("HW fit", colScore),
		padRight("Size", colSize),
		"Notes")
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", totalWidth)) //nolint:errcheck

	for i := range ranked {
		rc := &ranked[i]
		fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s  %s\n", //nolint:errcheck
			padRight(fmt.Sprintf("%d", rc.Rank), colRank),
			padRight(truncate(displayName(rc), maxNameWidth), nameWidth),
			padRight(fmt.Sprintf("%.3f", rc.ClosenessScore), colScore),
			padRight(fmt.Sprintf("%.3f", rc.ContentSimilarity), colScore),
			padRight(fmt.Sprintf("%.3f", rc.HardwareFit), colScore),
			padRight(fmt.Sprintf("%.1fGB", rc.Entry.SizeGB), colSize),
			rc.Note)
	}
	fmt.Fprintf(w, "\n") //nolint:errcheck

	if result.ResolutionApplied != "" {
		fmt.Fprintf(w, "Resolution applied: %s\n\n", result.ResolutionApplied) //nolint:errcheck
	}
}

func renderReasoning(w io.Writer, reasoning []string) {
	for _, line := range reasoning {
		fmt.Fprintf(w, "  %s\n", line) //nolint:errcheck
	}
}

func renderJSON(w io.Writer, result *engine.Result, top int) error {
	trimmed := *result
	if len(trimmed.Ranked) > top {
		trimmed.Ranked = trimmed.Ranked[:top]
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&trimmed); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

func displayName(rc *ranking.Ranked) string {
	if rc.Entry.DisplayName != "" {
		return rc.Entry.DisplayName
	}
	return rc.Entry.ID
}

// truncate shortens s to at most maxLen runes, appending an ellipsis.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
