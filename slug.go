package pubstatic

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SlugField is the node field written by DeriveSlug.
const SlugField = "slug"

// DeriveSlug computes the slug field for an Mdx node. It returns false for
// any other node kind, in which case nothing should be written.
//
// The frontmatter slug is considered first and the title second, so a title
// always wins when both keys are present. Value is nil when neither exists.
func DeriveSlug(node ContentNode) (NodeField, bool) {
	if node.Internal.Type != KindMdx {
		return NodeField{}, false
	}

	var slug any
	if node.Frontmatter.Has("slug") {
		slug = "/" + KebabCase(stringifyValue(node.Frontmatter["slug"]))
	}
	if node.Frontmatter.Has("title") {
		slug = "/" + KebabCase(stringifyValue(node.Frontmatter["title"]))
	}
	return NodeField{NodeID: node.ID, Name: SlugField, Value: slug}, true
}

// KebabCase converts s to lowercase words joined by hyphens.
// e.g. "Hello, World!" -> "hello-world", "fooBar" -> "foo-bar"
func KebabCase(s string) string {
	words := Words(apostrophes.Replace(deburr(s)))
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "-")
}

// Words splits s into words at punctuation, whitespace, case changes and
// letter/digit boundaries. Ordinals such as "1st" stay in one piece.
func Words(s string) []string {
	rs := []rune(s)
	var words []string
	start := -1
	flush := func(end int) {
		if start >= 0 {
			words = append(words, splitRun(rs[start:end])...)
			start = -1
		}
	}
	for i, r := range rs {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(rs))
	return words
}

type runeClass int

const (
	classLower runeClass = iota
	classUpper
	classDigit
)

func classify(r rune) runeClass {
	switch {
	case unicode.IsDigit(r):
		return classDigit
	case unicode.IsUpper(r):
		return classUpper
	default:
		return classLower
	}
}

// splitRun splits one alphanumeric run at case and digit boundaries.
func splitRun(run []rune) []string {
	var parts []string
	begin := 0
	for i := 1; i < len(run); i++ {
		prev, cur := classify(run[i-1]), classify(run[i])
		split := false
		switch {
		case (prev == classDigit) != (cur == classDigit):
			split = true
		case prev == classLower && cur == classUpper:
			split = true
		case prev == classUpper && cur == classUpper && i+1 < len(run) && classify(run[i+1]) == classLower:
			split = true
		}
		if split {
			parts = append(parts, string(run[begin:i]))
			begin = i
		}
	}
	parts = append(parts, string(run[begin:]))
	return mergeOrdinals(parts)
}

func mergeOrdinals(parts []string) []string {
	out := make([]string, 0, len(parts))
	for i := 0; i < len(parts); i++ {
		p := parts[i]
		if i+1 < len(parts) && isDigits(p) && isOrdinalSuffix(p, parts[i+1]) &&
			(i+2 == len(parts) || classify([]rune(parts[i+2])[0]) == classUpper) {
			out = append(out, p+parts[i+1])
			i++
			continue
		}
		out = append(out, p)
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func isOrdinalSuffix(number, suffix string) bool {
	want := "th"
	switch number[len(number)-1] {
	case '1':
		want = "st"
	case '2':
		want = "nd"
	case '3':
		want = "rd"
	}
	return suffix == want || suffix == strings.ToUpper(want)
}

var apostrophes = strings.NewReplacer("'", "", "’", "")

// Letters that do not decompose into a base letter plus combining marks.
var ligatures = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "Æ", "Ae", "œ", "oe", "Œ", "Oe",
	"ø", "o", "Ø", "O", "đ", "d", "Đ", "D", "ð", "d", "Ð", "D",
	"þ", "th", "Þ", "Th", "ł", "l", "Ł", "L", "ĳ", "ij", "Ĳ", "IJ",
)

// deburr strips combining diacritical marks from Latin letters.
func deburr(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return ligatures.Replace(out)
}

// stringifyValue renders a frontmatter scalar the way it reads in the
// source file. nil becomes the empty string.
func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = stringifyValue(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}
