// Package match links free-text setlist entries to stored karaoke listings
// despite width and spacing variance in titles.
package match

import "strings"

// platformDependentRunes are characters that render differently (or not at
// all) across systems without changing the semantic title: circled digits,
// Roman numerals, parenthesized company kanji and a few legacy symbols.
// They are folded to a plain space for matching only; stored titles are
// never rewritten.
var platformDependentRunes = func() map[rune]bool {
	set := make(map[rune]bool)

	// Circled digits ①-⑳
	for r := rune(0x2460); r <= 0x2473; r++ {
		set[r] = true
	}
	// Roman numerals Ⅰ-ⅻ
	for r := rune(0x2160); r <= 0x217B; r++ {
		set[r] = true
	}
	// Parenthesized company/era kanji and legacy unit symbols
	for _, r := range "㈱㈲㈹㍾㍽㍼㍻№℡㏍" {
		set[r] = true
	}

	return set
}()

// ReplacePlatformDependent maps every platform-dependent character in the
// title to a plain space.
func ReplacePlatformDependent(title string) string {
	return strings.Map(func(r rune) rune {
		if platformDependentRunes[r] {
			return ' '
		}
		return r
	}, title)
}

// FoldWidth maps full-width ASCII punctuation and symbols (！ through ～) to
// their half-width equivalents by the fixed code-point offset. This is a
// one-way fold; the vendor catalog stores symbols in either width.
func FoldWidth(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0xFF01 && r <= 0xFF5E {
			return r - 0xFEE0
		}
		return r
	}, s)
}
