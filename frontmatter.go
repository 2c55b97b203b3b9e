package pubstatic

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// SplitFrontmatter separates YAML frontmatter (`---` delimited) from the
// document body. If the document does not start with a delimiter, had is
// false and body is the full input.
func SplitFrontmatter(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = "\r\n"
	}

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the last line has no trailing newline.
		if bytes.HasSuffix(content, []byte(nl+"---")) {
			end := len(content) - len("---")
			return content[start:end], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// ParseFrontmatter parses raw YAML frontmatter (without delimiters).
func ParseFrontmatter(raw []byte) (Frontmatter, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Frontmatter{}, nil
	}
	var fm Frontmatter
	if err := yaml.Unmarshal(raw, &fm); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if fm == nil {
		fm = Frontmatter{}
	}
	return fm, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// FrontmatterDate returns the parsed `date` key, if present and readable.
func FrontmatterDate(fm Frontmatter) (time.Time, bool) {
	switch v := fm["date"].(type) {
	case time.Time:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Categories returns the `categories` key as a list. A single scalar is
// treated as a one-element list; an absent or null key yields nil.
func Categories(fm Frontmatter) []string {
	switch v := fm["categories"].(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, stringifyValue(item))
		}
		return out
	case []string:
		return v
	default:
		return []string{stringifyValue(v)}
	}
}
