package store

import (
	"fmt"
	"strings"
)

// FormatSummary renders summary groups as the diagnostic text shown by the
// debug command.
func FormatSummary(title string, groups []UsageGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stored commands (%s):\n", title)
	if len(groups) == 0 {
		b.WriteString("- no commands stored\n")
		return b.String()
	}
	for _, g := range groups {
		fmt.Fprintf(&b, "- There are %d commands that have been used %d times\n", g.Commands, g.UsageCount)
	}
	return b.String()
}
