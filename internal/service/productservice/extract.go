package productservice

import (
	"regexp"
	"strings"
)

var (
	hashtagRe   = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	attributeRe = regexp.MustCompile(`^\s*([\p{L}][\p{L}\p{N} _-]{0,49}?)\s*:\s+(.+?)\s*$`)
)

// Extract derives search tags and attributes from a free-text description. Hashtags become
// lower-cased tags in order of first appearance; "Key: Value" lines become attributes.
func Extract(description string) ([]string, map[string]string) {
	tags := make([]string, 0)
	seen := make(map[string]bool)
	for _, m := range hashtagRe.FindAllStringSubmatch(description, -1) {
		tag := strings.ToLower(m[1])
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	attrs := make(map[string]string)
	for _, line := range strings.Split(description, "\n") {
		m := attributeRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		attrs[m[1]] = m[2]
	}
	return tags, attrs
}
