// Package textscan extracts hashtag and mention tokens from post bodies.
package textscan

import (
	"regexp"
	"strings"
)

var (
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	mentionPattern = regexp.MustCompile(`@(\w+)`)
)

// Hashtags returns the distinct hashtag tokens in content, lowercased,
// without the leading '#', in order of first appearance.
func Hashtags(content string) []string {
	return distinctMatches(hashtagPattern, content, true)
}

// Mentions returns the distinct mention tokens in content, without the
// leading '@', in order of first appearance. Handles keep their case; the
// caller resolves them against the user directory.
func Mentions(content string) []string {
	return distinctMatches(mentionPattern, content, false)
}

func distinctMatches(pattern *regexp.Regexp, content string, lower bool) []string {
	matches := pattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		token := m[1]
		if lower {
			token = strings.ToLower(token)
		}
		if seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, token)
	}
	return out
}
