// Package conflict implements identifier screening against a firm's
// existing-client/opposing-party index.
package conflict

import (
	"strings"
)

// normalize lowercases and collapses interior whitespace so that casing and
// spacing differences never affect matching.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// soundex computes the classic four-character Soundex code for phonetic
// matching of person names.
func soundex(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	code := func(c byte) byte {
		switch c {
		case 'B', 'F', 'P', 'V':
			return '1'
		case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
			return '2'
		case 'D', 'T':
			return '3'
		case 'L':
			return '4'
		case 'M', 'N':
			return '5'
		case 'R':
			return '6'
		}
		return 0
	}

	var first byte
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			first = s[i]
			s = s[i:]
			break
		}
	}
	if first == 0 {
		return ""
	}

	out := []byte{first}
	prev := code(first)
	for i := 1; i < len(s) && len(out) < 4; i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			prev = 0
			continue
		}
		// H and W are transparent between coded letters
		if c == 'H' || c == 'W' {
			continue
		}
		d := code(c)
		if d != 0 && d != prev {
			out = append(out, d)
		}
		prev = d
	}
	for len(out) < 4 {
		out = append(out, '0')
	}
	return string(out)
}

// phoneticEqual reports whether every word of a has a soundex-equal
// counterpart in b, in order. Full-name phonetic matching compares word by
// word so "Jon Smyth" still hits "John Smith".
func phoneticEqual(a, b string) bool {
	aw := strings.Fields(normalize(a))
	bw := strings.Fields(normalize(b))
	if len(aw) == 0 || len(aw) != len(bw) {
		return false
	}
	for i := range aw {
		if soundex(aw[i]) != soundex(bw[i]) {
			return false
		}
	}
	return true
}

// levenshtein computes edit distance over runes
func levenshtein(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}

// similarity maps edit distance to [0,1], 1 meaning identical
func similarity(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)
	if a == "" && b == "" {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
