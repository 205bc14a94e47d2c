// Package xmlutil escapes text for XML-delimited prompt templates.
package xmlutil

import (
	"encoding/xml"
	"strings"
)

// Escape rewrites characters with special meaning in XML so that
// document content embedded in an XML-tagged prompt section cannot
// close the tag early or smuggle in markup.
func Escape(s string) string {
	var buf strings.Builder
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
