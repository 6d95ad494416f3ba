package services

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/enunezf/routinesync/internal/core/domain"
)

// LineDiff renders a line oriented diff between the normalized forms of
// current and target. Removed lines start with "-", added lines with "+" and
// unchanged lines with a space.
func LineDiff(current, target string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(normalizeForDiff(current), normalizeForDiff(target))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
		}
	}
	return sb.String()
}

// normalizeForDiff terminates every line so the last line diffs like the rest
func normalizeForDiff(text string) string {
	text = domain.Normalize(text)
	if text == "" {
		return ""
	}
	return text + "\n"
}
