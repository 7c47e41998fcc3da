package imports

import "strings"

// detectSeparator picks the cell separator from the header line. Tab wins
// only when the line carries tabs and no commas, matching how the legacy
// exports mix both formats.
func detectSeparator(line string) rune {
	if strings.ContainsRune(line, '\t') && !strings.ContainsRune(line, ',') {
		return '\t'
	}
	return ','
}

// splitFields splits one line on the separator, honoring double quotes. The
// quotes themselves are dropped and every cell is trimmed.
func splitFields(line string, separator rune) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, char := range line {
		switch {
		case char == '"':
			inQuotes = !inQuotes
		case char == separator && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(char)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}

// nonEmptyLines splits raw file content into trimmed, non-empty lines. Line
// numbers reported by the importer are 1-based positions in this slice, with
// the header counting as line 1.
func nonEmptyLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
