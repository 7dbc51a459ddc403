// Package args implements the argument grammar used by text commands: a
// scanner that peels tokens off an argument string, the built-in argument
// types that recognise and convert those tokens, and the per-argument specs
// that drive them.
package args

import (
	"regexp"
	"strings"
)

// Separator is the single character removed after every consumed token.
const Separator = " "

// Compile anchors pattern at the start of the input and makes it
// case-insensitive, which is how every argument type matches.
func Compile(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^(?:` + pattern + `)`)
}

// Scan matches re at the start of remaining. On success it returns the
// matched text and remaining with the match and one following separator
// removed. An empty match counts as no match, and remaining is returned as is.
func Scan(re *regexp.Regexp, remaining string) (token, rest string, ok bool) {
	loc := re.FindStringIndex(remaining)
	if loc == nil || loc[0] != 0 || loc[1] == 0 {
		return "", remaining, false
	}

	token = remaining[:loc[1]]
	rest = strings.TrimPrefix(remaining[loc[1]:], Separator)
	return token, rest, true
}
