package loaders

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// unit is a top-level function or class found by a segmenter.
// Start and End are inclusive line indexes; Head is the declaration line.
type unit struct {
	Start int
	End   int
	Head  string
}

// segmenter finds the top-level units of a source file.
type segmenter interface {
	// Units returns the units in file order. ok is false when the file
	// could not be scanned (for example unbalanced braces), in which case
	// the file is kept whole.
	Units(lines []string) (units []unit, ok bool)

	// CommentPrefix starts the placeholder line in simplified code.
	CommentPrefix() string
}

// segmenterFor returns the segmenter for a code category.
func segmenterFor(c domain.Category) segmenter {
	switch c {
	case domain.CategoryJava:
		return braceSegmenter{decl: javaDecl, annotations: true}
	case domain.CategoryJavaScript:
		return braceSegmenter{decl: jsDecl, templates: true}
	case domain.CategoryPython:
		return pythonSegmenter{}
	default:
		return nil
	}
}

// segment is one output piece of a parsed file.
type segment struct {
	Content     string
	ContentType string
}

// parseSegments splits source into its top-level units followed by the
// simplified remainder. When the file has no units or cannot be scanned
// the whole file is returned as a single segment with no content type.
func parseSegments(seg segmenter, source string) []segment {
	lines := strings.Split(source, "\n")
	units, ok := seg.Units(lines)
	if !ok || len(units) == 0 {
		return []segment{{Content: source}}
	}

	out := make([]segment, 0, len(units)+1)
	simplified := make([]string, 0, len(lines))
	next := 0
	for _, u := range units {
		out = append(out, segment{
			Content:     strings.Join(lines[u.Start:u.End+1], "\n"),
			ContentType: domain.ContentTypeFunctionsClasses,
		})
		simplified = append(simplified, lines[next:u.Start]...)
		simplified = append(simplified, seg.CommentPrefix()+" Code for: "+strings.TrimSpace(u.Head))
		next = u.End + 1
	}
	simplified = append(simplified, lines[next:]...)

	out = append(out, segment{
		Content:     strings.Join(simplified, "\n"),
		ContentType: domain.ContentTypeSimplifiedCode,
	})
	return out
}

var (
	javaDecl = regexp.MustCompile(
		`^(?:(?:public|protected|private|abstract|final|static|sealed|non-sealed|strictfp)\s+)*` +
			`(?:class|interface|enum|record|@interface)\s+\w+`)
	jsDecl = regexp.MustCompile(
		`^(?:export\s+(?:default\s+)?)?(?:(?:async\s+)?function\b|class\b)`)
	pythonDecl = regexp.MustCompile(`^(?:async\s+def|def|class)\s`)
)

// braceSegmenter finds declarations at brace depth zero and extends each
// to the line where its braces close.
type braceSegmenter struct {
	decl        *regexp.Regexp
	annotations bool
	templates   bool
}

func (b braceSegmenter) CommentPrefix() string { return "//" }

func (b braceSegmenter) Units(lines []string) ([]unit, bool) {
	sc := braceScanner{templates: b.templates}
	var units []unit

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if !sc.atTopLevel() || !b.decl.MatchString(trimmed) {
			sc.scan(lines[i])
			continue
		}

		start := i
		if b.annotations {
			for start > 0 && strings.HasPrefix(strings.TrimSpace(lines[start-1]), "@") {
				start--
			}
			if len(units) > 0 && start <= units[len(units)-1].End {
				start = units[len(units)-1].End + 1
			}
		}

		opened := false
		end := -1
		for j := i; j < len(lines); j++ {
			if sc.scan(lines[j]) {
				opened = true
			}
			if opened && sc.depth == 0 {
				end = j
				break
			}
		}
		if end < 0 {
			return nil, false
		}
		units = append(units, unit{Start: start, End: end, Head: trimmed})
		i = end
	}

	if sc.depth != 0 || sc.inBlock {
		return nil, false
	}
	return units, true
}

// braceScanner tracks brace depth across lines, ignoring braces inside
// comments and string literals.
type braceScanner struct {
	depth     int
	inBlock   bool
	quote     byte // 0, '\'', '"', '`' or 't' for a Java text block
	templates bool
}

func (s *braceScanner) atTopLevel() bool {
	return s.depth == 0 && !s.inBlock && s.quote == 0
}

// scan consumes one line and reports whether an opening brace was seen.
func (s *braceScanner) scan(line string) (opened bool) {
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case s.inBlock:
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				s.inBlock = false
				i++
			}
		case s.quote == 't':
			if strings.HasPrefix(line[i:], `"""`) {
				s.quote = 0
				i += 2
			}
		case s.quote != 0:
			if c == '\\' {
				i++
			} else if c == s.quote {
				s.quote = 0
			}
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return opened
		case c == '/' && i+1 < len(line) && line[i+1] == '*':
			s.inBlock = true
			i++
		case strings.HasPrefix(line[i:], `"""`) && !s.templates:
			s.quote = 't'
			i += 2
		case c == '"' || c == '\'' || (c == '`' && s.templates):
			s.quote = c
		case c == '{':
			s.depth++
			opened = true
		case c == '}':
			s.depth--
		}
	}
	if s.quote == '"' || s.quote == '\'' {
		s.quote = 0
	}
	return opened
}

// pythonSegmenter finds top-level def and class statements and extends
// each to the next line that returns to column zero.
type pythonSegmenter struct{}

func (pythonSegmenter) CommentPrefix() string { return "#" }

func (pythonSegmenter) Units(lines []string) ([]unit, bool) {
	var units []unit
	inString := ""

	isTopLevel := func(line string) bool {
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			return false
		}
		switch line[0] {
		case ')', ']', '}':
			return false
		}
		return true
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if inString != "" || !pythonDecl.MatchString(line) {
			inString = trackTripleQuotes(line, inString)
			continue
		}

		start := i
		for start > 0 && strings.HasPrefix(lines[start-1], "@") {
			start--
		}

		end := i
		inString = trackTripleQuotes(line, "")
		for j := i + 1; j < len(lines); j++ {
			if inString == "" && isTopLevel(lines[j]) {
				break
			}
			inString = trackTripleQuotes(lines[j], inString)
			if strings.TrimSpace(lines[j]) != "" {
				end = j
			}
		}
		if inString != "" {
			return nil, false
		}
		units = append(units, unit{Start: start, End: end, Head: line})
		i = end
	}
	return units, true
}

// trackTripleQuotes updates the open triple-quote delimiter after line.
func trackTripleQuotes(line, open string) string {
	for i := 0; i+3 <= len(line); i++ {
		tok := line[i : i+3]
		if tok != `"""` && tok != `'''` {
			continue
		}
		switch open {
		case "":
			open = tok
		case tok:
			open = ""
		default:
			continue
		}
		i += 2
	}
	return open
}
