// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"
	"unicode"
)

// titleStoplist holds the short articles, conjunctions, and prepositions
// left lowercase by headline capitalization.
var titleStoplist = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "but": true, "or": true, "nor": true, "for": true, "so": true, "yet": true,
	"as": true, "at": true, "by": true, "in": true, "of": true, "off": true,
	"on": true, "per": true, "to": true, "up": true, "via": true, "with": true, "from": true,
}

// TitleCase capitalizes every word of a title except stoplist words. The
// first word of the string and the first word after ":", ".", "!" or "?"
// are always capitalized regardless of the stoplist.
func TitleCase(title string) string {
	words := strings.Split(title, " ")
	forceNext := true
	for i, w := range words {
		if w == "" {
			continue
		}
		if forceNext || !titleStoplist[strings.ToLower(w)] {
			words[i] = capitalize(w)
		} else {
			words[i] = strings.ToLower(w)
		}
		forceNext = strings.ContainsAny(w[len(w)-1:], ":.!?")
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first letter of a word, leaving the rest
// untouched (acronyms and mixed-case tokens keep their tail).
func capitalize(w string) string {
	runes := []rune(w)
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			return string(runes)
		}
		// Leading punctuation (brace-protected words) is skipped.
		if r != '{' && r != '(' && r != '"' && r != '\'' {
			break
		}
	}
	return w
}
