package chunker

import "strings"

// LineChunker splits text into one chunk per non-empty line.
type LineChunker struct{}

func NewLineChunker() *LineChunker { return &LineChunker{} }

// Split trims every line and drops the blank ones.
func (c *LineChunker) Split(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
