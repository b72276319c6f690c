package readme

import "strings"

// document is a markdown file held as lines, without the final newline.
type document struct {
	lines []string
}

func parseDocument(text string) *document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return &document{}
	}
	return &document{lines: strings.Split(text, "\n")}
}

func (d *document) String() string {
	return strings.Join(trimBlank(d.lines), "\n") + "\n"
}

type heading struct {
	line  int
	level int
	text  string
}

// headings lists ATX headings outside fenced code blocks.
func (d *document) headings() []heading {
	var out []heading
	fenced := false
	for i, line := range d.lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fenced = !fenced
			continue
		}
		if fenced {
			continue
		}
		if level, text, ok := parseHeading(line); ok {
			out = append(out, heading{line: i, level: level, text: text})
		}
	}
	return out
}

func parseHeading(line string) (int, string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}
	rest := line[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}
	text := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(rest), "#"))
	return level, text, true
}

// find returns the heading line of the first heading matching level and text
// case-insensitively, and the end of its body: the next heading of the same
// or a higher level.
func (d *document) find(level int, text string) (start, end int, ok bool) {
	hs := d.headings()
	for i, h := range hs {
		if h.level != level || !strings.EqualFold(h.text, text) {
			continue
		}
		end = len(d.lines)
		for _, next := range hs[i+1:] {
			if next.level <= level {
				end = next.line
				break
			}
		}
		return h.line, end, true
	}
	return 0, 0, false
}

func (d *document) has(level int, text string) bool {
	_, _, ok := d.find(level, text)
	return ok
}

// descriptionSpan returns the span between the title and the next heading.
func (d *document) descriptionSpan() (start, end int, ok bool) {
	hs := d.headings()
	for i, h := range hs {
		if h.level != 1 {
			continue
		}
		end = len(d.lines)
		if i+1 < len(hs) {
			end = hs[i+1].line
		}
		return h.line, end, true
	}
	return 0, 0, false
}

// setTitle replaces the first level-one heading or inserts one at the top.
func (d *document) setTitle(title string) {
	for _, h := range d.headings() {
		if h.level == 1 {
			d.lines[h.line] = "# " + title
			return
		}
	}
	d.lines = append([]string{"# " + title, ""}, d.lines...)
}

// setDescription replaces the text between the title and the next heading.
func (d *document) setDescription(body string) {
	start, end, ok := d.descriptionSpan()
	if !ok {
		return
	}
	d.splice(start+1, end, block(body, end < len(d.lines)))
}

// upsert replaces the body of a section or appends the section at the end.
func (d *document) upsert(level int, text, body string) {
	start, end, ok := d.find(level, text)
	if !ok {
		d.lines = append(trimBlank(d.lines), "", strings.Repeat("#", level)+" "+text)
		d.lines = append(d.lines, block(body, false)...)
		return
	}
	d.splice(start+1, end, block(body, end < len(d.lines)))
}

// remove splices a section out, heading included.
func (d *document) remove(level int, text string) bool {
	start, end, ok := d.find(level, text)
	if !ok {
		return false
	}
	d.splice(start, end, nil)
	return true
}

func (d *document) splice(start, end int, repl []string) {
	out := make([]string, 0, len(d.lines)-(end-start)+len(repl))
	out = append(out, d.lines[:start]...)
	out = append(out, repl...)
	out = append(out, d.lines[end:]...)
	d.lines = out
}

// block frames body with a leading blank line and, when more content
// follows, a trailing one.
func block(body string, more bool) []string {
	body = strings.Trim(body, "\n")
	out := []string{""}
	if body != "" {
		out = append(out, strings.Split(body, "\n")...)
	}
	if more {
		out = append(out, "")
	}
	return out
}

func trimBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[:end]
}
