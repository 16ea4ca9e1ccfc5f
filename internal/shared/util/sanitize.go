package util

import (
	"path"
	"strings"
	"unicode"
)

const maxFileNameLen = 255

// SanitizeFileName reduces a client-supplied file name to a printable base
// name safe to log and echo back. Empty results become fallback.
func SanitizeFileName(name, fallback string) string {
	s := strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	s = path.Base(s)
	if s == "." || s == "/" || s == ".." {
		s = ""
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	if len(s) > maxFileNameLen {
		cut := maxFileNameLen
		for cut > 0 && !utf8RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
