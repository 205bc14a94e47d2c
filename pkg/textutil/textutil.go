// Package textutil provides small text-window helpers for mining
// relationships out of unstructured documents.
package textutil

import "strings"

// sentenceBoundary reports whether b terminates a sentence.
func sentenceBoundary(b byte) bool {
	return b == '.' || b == '!' || b == '?' || b == '\n'
}

// Sentence returns the sentence fragment of text that spans the byte
// range [start, end). The fragment is expanded outward to the nearest
// sentence boundaries and trimmed of surrounding whitespace.
func Sentence(text string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return ""
	}

	lo := start
	for lo > 0 && !sentenceBoundary(text[lo-1]) {
		lo--
	}
	hi := end
	for hi < len(text) && !sentenceBoundary(text[hi]) {
		hi++
	}
	if hi < len(text) {
		hi++ // include the terminator
	}
	return strings.TrimSpace(text[lo:hi])
}

// Truncate cuts text to at most max bytes without splitting a rune.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && text[cut]&0xC0 == 0x80 {
		cut--
	}
	return text[:cut]
}
