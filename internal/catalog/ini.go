package catalog

import (
	"strings"
)

// document is an INI file split into lines with their terminators kept.
type document struct {
	lines []string
	eol   string
}

func parseDocument(data []byte) *document {
	d := &document{eol: "\n"}
	s := string(data)
	for len(s) > 0 {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			d.lines = append(d.lines, s)
			break
		}
		d.lines = append(d.lines, s[:i+1])
		s = s[i+1:]
	}
	if len(d.lines) > 0 && strings.HasSuffix(d.lines[0], "\r\n") {
		d.eol = "\r\n"
	}
	return d
}

func (d *document) bytes() []byte {
	var sb strings.Builder
	for _, l := range d.lines {
		sb.WriteString(l)
	}
	return []byte(sb.String())
}

// span is the half-open line range of one section, header included.
type span struct {
	name  string
	start int
	end   int
}

func sectionHeader(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return "", false
	}
	return strings.TrimSpace(s[1 : len(s)-1]), true
}

func (d *document) spans() []span {
	var out []span
	for i, l := range d.lines {
		name, ok := sectionHeader(l)
		if !ok {
			continue
		}
		if n := len(out); n > 0 {
			out[n-1].end = i
		}
		out = append(out, span{name: name, start: i, end: len(d.lines)})
	}
	return out
}

// find locates a section by name, case-insensitively.
func (d *document) find(name string) (span, bool) {
	for _, s := range d.spans() {
		if strings.EqualFold(s.name, name) {
			return s, true
		}
	}
	return span{}, false
}

// splitEntry parses "key = value" or "key: value". Keys fold to lower
// case; comment and blank lines yield ok=false.
func splitEntry(line string) (key, value string, ok bool) {
	s := strings.TrimSpace(line)
	if s == "" || s[0] == '#' || s[0] == ';' {
		return "", "", false
	}
	i := strings.IndexAny(s, "=:")
	if i <= 0 {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(s[:i])), strings.TrimSpace(s[i+1:]), true
}

// field returns the line index and value of key in s. The first
// occurrence wins.
func (d *document) field(s span, key string) (int, string, bool) {
	key = strings.ToLower(key)
	for i := s.start + 1; i < s.end; i++ {
		k, v, ok := splitEntry(d.lines[i])
		if ok && k == key {
			return i, v, true
		}
	}
	return -1, "", false
}

func (d *document) fields(s span) fields {
	f := make(fields)
	for i := s.start + 1; i < s.end; i++ {
		k, v, ok := splitEntry(d.lines[i])
		if !ok {
			continue
		}
		if _, dup := f[k]; !dup {
			f[k] = v
		}
	}
	return f
}

func terminator(l string) string {
	switch {
	case strings.HasSuffix(l, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(l, "\n"):
		return "\n"
	default:
		return ""
	}
}

// setLine replaces the content of line i, keeping its terminator.
func (d *document) setLine(i int, text string) {
	d.lines[i] = text + terminator(d.lines[i])
}

// terminate makes sure the last line ends with a line break.
func (d *document) terminate() {
	if n := len(d.lines); n > 0 && terminator(d.lines[n-1]) == "" {
		d.lines[n-1] += d.eol
	}
}

// insert places text as a new line before index at.
func (d *document) insert(at int, text string) {
	if at > 0 && terminator(d.lines[at-1]) == "" {
		d.lines[at-1] += d.eol
	}
	d.lines = append(d.lines, "")
	copy(d.lines[at+1:], d.lines[at:])
	d.lines[at] = text + d.eol
}

// tail is the index just past the last non-blank line of s.
func (d *document) tail(s span) int {
	at := s.end
	for at > s.start+1 && strings.TrimSpace(d.lines[at-1]) == "" {
		at--
	}
	return at
}

// upsert rewrites key in s or inserts it at the end of the section.
func (d *document) upsert(s span, key, value string) {
	if i, _, ok := d.field(s, key); ok {
		d.setLine(i, entryLine(key, value))
		return
	}
	d.insert(d.tail(s), entryLine(key, value))
}

// appendSection adds a section at the end of the file, separated from
// existing content by one blank line.
func (d *document) appendSection(name string, body []string) {
	d.terminate()
	if n := len(d.lines); n > 0 && strings.TrimSpace(d.lines[n-1]) != "" {
		d.lines = append(d.lines, d.eol)
	}
	d.lines = append(d.lines, "["+name+"]"+d.eol)
	for _, l := range body {
		d.lines = append(d.lines, l+d.eol)
	}
}

func entryLine(key, value string) string {
	if value == "" {
		return key + " ="
	}
	return key + " = " + value
}

// fields is the key/value content of one section.
type fields map[string]string

func (f fields) get(key, fallback string) string {
	if v, ok := f[key]; ok {
		return v
	}
	return fallback
}

func (f fields) require(key string) (string, error) {
	v, ok := f[key]
	if !ok {
		return "", &missingFieldError{key: key}
	}
	return v, nil
}

type missingFieldError struct {
	key string
}

func (e *missingFieldError) Error() string {
	return "missing " + e.key
}

// splitList splits a comma-joined list, dropping blanks and folding case.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
