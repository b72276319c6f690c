// Package naming derives the casing conventions a project name appears in
// across a template: kebab, camel, Pascal, snake, CONSTANT and Title case.
//
// All forms are built from the same word list, so any one of them can be
// turned back into the others.
package naming

import (
	"sort"
	"strings"
	"unicode"
)

// Forms holds every casing of one project name.
type Forms struct {
	Kebab    string
	Camel    string
	Pascal   string
	Snake    string
	Constant string
	Title    string
}

// Of returns all forms of name. Scoped package names ("@scope/app") use the
// unscoped part.
func Of(name string) Forms {
	words := Words(Unscoped(name))
	return Forms{
		Kebab:    kebab(words),
		Camel:    camel(words),
		Pascal:   pascal(words),
		Snake:    snake(words),
		Constant: strings.ToUpper(snake(words)),
		Title:    title(words),
	}
}

// List returns the forms in a fixed order.
func (f Forms) List() []string {
	return []string{f.Kebab, f.Camel, f.Pascal, f.Snake, f.Constant, f.Title}
}

// Replacement is one literal substitution from a template form to a user form.
type Replacement struct {
	From string
	To   string
}

// Replacements pairs every form of from with the same form of to. Pairs are
// ordered longest From first and deduplicated, so a form that contains
// another (e.g. "Build Elevate" vs "Build") is replaced before it.
func Replacements(from, to Forms) []Replacement {
	fromList := from.List()
	toList := to.List()

	seen := make(map[string]bool, len(fromList))
	pairs := make([]Replacement, 0, len(fromList))
	for i, f := range fromList {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		pairs = append(pairs, Replacement{From: f, To: toList[i]})
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return len(pairs[i].From) > len(pairs[j].From)
	})
	return pairs
}

// Unscoped strips an npm scope prefix: "@acme/app" -> "app".
func Unscoped(name string) string {
	if strings.HasPrefix(name, "@") {
		if idx := strings.Index(name, "/"); idx >= 0 {
			return name[idx+1:]
		}
		return strings.TrimPrefix(name, "@")
	}
	return name
}

// Words splits s into lower-case words. Separators are '-', '_', ' ', '.',
// '/' and '@'; every upper-case letter also starts a new word.
func Words(s string) []string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	for _, r := range s {
		switch {
		case isSeparator(r):
			flush()
		case unicode.IsUpper(r):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()

	return words
}

func isSeparator(r rune) bool {
	switch r {
	case '-', '_', ' ', '.', '/', '@':
		return true
	}
	return false
}

func kebab(words []string) string {
	return strings.Join(words, "-")
}

func snake(words []string) string {
	return strings.Join(words, "_")
}

func title(words []string) string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = capitalize(w)
	}
	return strings.Join(out, " ")
}

func pascal(words []string) string {
	return joinCapitalized(words, true)
}

func camel(words []string) string {
	return joinCapitalized(words, false)
}

// joinCapitalized glues words without separators. A word that starts with a
// digit has no letter to mark its boundary, so it keeps an underscore in
// front of it; this keeps the result splittable back into the same words.
func joinCapitalized(words []string, upperFirst bool) string {
	var b strings.Builder
	for i, w := range words {
		if i > 0 && startsWithDigit(w) {
			b.WriteByte('_')
		}
		if i == 0 && !upperFirst {
			b.WriteString(w)
			continue
		}
		b.WriteString(capitalize(w))
	}
	return b.String()
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	runes := []rune(w)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func startsWithDigit(w string) bool {
	for _, r := range w {
		return unicode.IsDigit(r)
	}
	return false
}

// ReplaceAll applies every replacement to text as a literal substitution.
// Occurrences of a From that sit inside an existing occurrence of any To are
// left alone, so running ReplaceAll twice gives the same result as once even
// when the new name contains the old one ("build-elevate-pro").
func ReplaceAll(text string, pairs []Replacement) string {
	for _, pair := range pairs {
		text = replaceUnprotected(text, pair, pairs)
	}
	return text
}

type span struct{ start, end int }

func replaceUnprotected(text string, pair Replacement, pairs []Replacement) string {
	if pair.From == "" || pair.From == pair.To || !strings.Contains(text, pair.From) {
		return text
	}

	var protected []span
	for _, p := range pairs {
		if p.To == "" || !strings.Contains(p.To, pair.From) {
			continue
		}
		for _, idx := range indexAll(text, p.To) {
			protected = append(protected, span{idx, idx + len(p.To)})
		}
	}

	var b strings.Builder
	last := 0
	for _, idx := range indexAll(text, pair.From) {
		if idx < last || inside(span{idx, idx + len(pair.From)}, protected) {
			continue
		}
		b.WriteString(text[last:idx])
		b.WriteString(pair.To)
		last = idx + len(pair.From)
	}
	b.WriteString(text[last:])
	return b.String()
}

func indexAll(text, sub string) []int {
	var out []int
	for offset := 0; offset <= len(text)-len(sub); {
		idx := strings.Index(text[offset:], sub)
		if idx < 0 {
			break
		}
		out = append(out, offset+idx)
		offset += idx + 1
	}
	return out
}

func inside(s span, spans []span) bool {
	for _, p := range spans {
		if s.start >= p.start && s.end <= p.end {
			return true
		}
	}
	return false
}
