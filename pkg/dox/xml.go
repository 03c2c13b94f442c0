package dox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	CompoundFileHeader = "<?xml version='1.0' encoding='UTF-8' standalone='no'?>\n<doxygen>\n"
	CompoundFileTerm   = "</doxygen>\n"
	IndexFileHeader    = "<?xml version='1.0' encoding='UTF-8' standalone='no'?>\n<doxygenindex>\n"
	IndexFileTerm      = "</doxygenindex>\n"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	"\"", "&quot;",
)

// EscapeXML escapes text for use in element content or single-quoted attributes
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// SanitizeID lowercases s and replaces characters not allowed in reference IDs
func SanitizeID(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// WriteCompoundFile writes itemXML as the standalone document <outputDir>/<refID>.xml
func WriteCompoundFile(outputDir, refID, itemXML string) error {
	path := filepath.Join(outputDir, refID+".xml")
	content := CompoundFileHeader + itemXML + CompoundFileTerm
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write compound file %s: %w", path, err)
	}
	return nil
}
