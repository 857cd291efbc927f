// Package response turns a model reply into file entries, dependency specs
// and a development plan.
package response

import (
	"strings"
)

// FileMarker prefixes a file declaration line in a model reply.
const FileMarker = "FILE:"

const fence = "```"

// FileEntry is a single file declared in a model reply
type FileEntry struct {
	Path    string
	Content string
}

// Parse scans a reply line by line and returns every declared file in
// document order. A file is a FILE: marker followed by a fenced block;
// blocks without a declared path and declarations without content are
// dropped. Parse never fails.
func Parse(raw string) []FileEntry {
	var (
		entries     []FileEntry
		currentPath string
		content     []string
		inBlock     bool
	)

	flush := func() {
		if currentPath != "" && strings.TrimSpace(strings.Join(content, "")) != "" {
			entries = append(entries, FileEntry{
				Path:    currentPath,
				Content: strings.Join(content, "\n"),
			})
		}
		content = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)

		if path, ok := parseMarker(trimmed, !inBlock); ok {
			flush()
			currentPath = path
			continue
		}

		if strings.HasPrefix(trimmed, fence) {
			if inBlock {
				// A closed block completes the file it belongs to.
				flush()
				currentPath = ""
			}
			inBlock = !inBlock
			continue
		}

		if inBlock && currentPath != "" {
			content = append(content, line)
		}
	}

	flush()
	return entries
}

// parseMarker reports whether the trimmed line is a FILE: declaration and
// returns the cleaned path. Outside a block the marker may be decorated as a
// heading or list item; inside a block only emphasis is tolerated.
func parseMarker(trimmed string, lenient bool) (string, bool) {
	// Models like to bold or list the marker: "**FILE: x**", "- FILE: x".
	cleaned := strings.TrimSpace(strings.Trim(trimmed, "*"))
	if lenient {
		cleaned = strings.ReplaceAll(cleaned, "*", "")
		cleaned = strings.TrimSpace(strings.TrimLeft(cleaned, "-#> "))
	}
	if !strings.HasPrefix(cleaned, FileMarker) {
		return "", false
	}

	path := strings.TrimSpace(strings.TrimPrefix(cleaned, FileMarker))
	path = strings.Trim(path, "`\"'")
	path = strings.TrimSpace(path)
	return path, true
}
