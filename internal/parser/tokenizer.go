package parser

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// preTag is the element that wraps the statistics table.
const preTag = "pre"

// Tokenize returns the candidate data lines of block in source order.
// It returns an empty slice when block has no complete <pre> element.
func Tokenize(block string) []string {
	segment, ok := preformattedText(block)
	if !ok {
		return []string{}
	}

	raw := strings.Split(segment, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" || !looksLikeData(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// preformattedText returns the text content of the first <pre> element.
// Entities are decoded and nested inline tags are skipped; <br> becomes a
// line break. The second result is false if no <pre> element is closed
// before the end of input.
//
// Design decision: We walk x/net/html tokens rather than cutting the block
// between "<pre" and "</pre>" because:
//  1. attributes, upper-case tags and comments do not confuse the search
//  2. entities such as &nbsp; arrive decoded
//  3. the tokenizer streams, so no DOM is built for a large page
func preformattedText(block string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(block))

	var sb strings.Builder
	inPre := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer failure; either way there is no closed block.
			return "", false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch {
			case string(name) == preTag:
				inPre = true
			case inPre && string(name) == "br":
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if inPre && string(name) == preTag {
				return sb.String(), true
			}
		case html.TextToken:
			if inPre {
				sb.Write(z.Text())
			}
		}
	}
}

// looksLikeData reports whether line starts with an ASCII digit or a
// Cyrillic letter.
func looksLikeData(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return isASCIIDigit(r) || isSourceLetter(r)
}

// isASCIIDigit reports whether r is 0-9. unicode.IsDigit would also accept
// other scripts' digits, which never appear in the tables.
func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isSourceLetter reports whether r is a Russian letter in either case.
func isSourceLetter(r rune) bool {
	switch {
	case r >= 'а' && r <= 'я':
		return true
	case r >= 'А' && r <= 'Я':
		return true
	case r == 'ё' || r == 'Ё':
		return true
	default:
		return false
	}
}
