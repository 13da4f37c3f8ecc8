package listing

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	SectionName  = "NOME"
	SectionShort = "DESCRIÇÃO CURTA"
	SectionLong  = "DESCRIÇÃO LONGA"
	SectionTags  = "HASHTAGS"

	MaxShortDescription = 140
	HashtagCount        = 5
)

var sectionOrder = []string{SectionName, SectionShort, SectionLong, SectionTags}

// Listing is a parsed copy-stage artifact.
type Listing struct {
	Name             string
	ShortDescription string
	LongDescription  string
	Hashtags         []string
}

// Issue is one deviation from the listing layout.
type Issue struct {
	Section string
	Message string
}

func (i Issue) String() string {
	if i.Section == "" {
		return i.Message
	}
	return i.Section + ": " + i.Message
}

// Report is the result of Check. It never changes the artifact.
type Report struct {
	Listing Listing
	Issues  []Issue
}

func (r Report) OK() bool { return len(r.Issues) == 0 }

type section struct {
	name string
	body []string
}

// Check parses text against the listing layout and reports every deviation.
func Check(text string) Report {
	var rep Report
	sections, preamble := split(text)
	if preamble != "" {
		rep.add("", "text before the first section")
	}

	found := make(map[string]section, len(sections))
	var order []string
	for _, s := range sections {
		if !known(s.name) {
			rep.add(s.name, "unexpected section")
			continue
		}
		if _, dup := found[s.name]; dup {
			rep.add(s.name, "section repeated")
			continue
		}
		found[s.name] = s
		order = append(order, s.name)
	}
	for _, name := range sectionOrder {
		if _, ok := found[name]; !ok {
			rep.add(name, "section missing")
		}
	}
	if !inOrder(order) {
		rep.add("", fmt.Sprintf("sections out of order: %s", strings.Join(order, ", ")))
	}

	if s, ok := found[SectionName]; ok {
		rep.Listing.Name = joinLines(s.body)
		if rep.Listing.Name == "" {
			rep.add(SectionName, "empty")
		}
	}
	if s, ok := found[SectionShort]; ok {
		rep.Listing.ShortDescription = joinLines(s.body)
		n := utf8.RuneCountInString(rep.Listing.ShortDescription)
		switch {
		case n == 0:
			rep.add(SectionShort, "empty")
		case n > MaxShortDescription:
			rep.add(SectionShort, fmt.Sprintf("%d characters, limit is %d", n, MaxShortDescription))
		}
	}
	if s, ok := found[SectionLong]; ok {
		rep.checkLong(s.body)
	}
	if s, ok := found[SectionTags]; ok {
		rep.checkTags(s.body)
	}
	return rep
}

func (r *Report) add(section, msg string) {
	r.Issues = append(r.Issues, Issue{Section: section, Message: msg})
}

func (r *Report) checkLong(body []string) {
	paragraphs := 0
	inParagraph := false
	for _, line := range body {
		line = strings.TrimSpace(line)
		if line == "" {
			inParagraph = false
			continue
		}
		if isSubheading(line) {
			r.add(SectionLong, fmt.Sprintf("contains a sub-heading %q", line))
		}
		if !inParagraph {
			paragraphs++
			inParagraph = true
		}
	}
	r.Listing.LongDescription = joinLines(body)
	switch {
	case paragraphs == 0:
		r.add(SectionLong, "empty")
	case paragraphs > 1:
		r.add(SectionLong, fmt.Sprintf("%d paragraphs, expected one", paragraphs))
	}
}

func (r *Report) checkTags(body []string) {
	for _, line := range body {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tag, ok := strings.CutPrefix(line, "- #")
		if !ok || strings.TrimSpace(tag) == "" {
			r.add(SectionTags, fmt.Sprintf("malformed hashtag line %q", line))
			continue
		}
		r.Listing.Hashtags = append(r.Listing.Hashtags, "#"+strings.TrimSpace(tag))
	}
	if n := len(r.Listing.Hashtags); n != HashtagCount {
		r.add(SectionTags, fmt.Sprintf("%d hashtags, expected %d", n, HashtagCount))
	}
}

// split cuts text at "### NAME:" lines. Text on the heading line after the
// colon belongs to the section body.
func split(text string) ([]section, string) {
	var (
		sections []section
		preamble []string
	)
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "###"); ok && !strings.HasPrefix(rest, "#") {
			name, inline, _ := strings.Cut(rest, ":")
			s := section{name: strings.ToUpper(strings.TrimSpace(name))}
			if inline = strings.TrimSpace(inline); inline != "" {
				s.body = append(s.body, inline)
			}
			sections = append(sections, s)
			continue
		}
		if len(sections) == 0 {
			if trimmed != "" {
				preamble = append(preamble, trimmed)
			}
			continue
		}
		last := &sections[len(sections)-1]
		last.body = append(last.body, line)
	}
	return sections, strings.Join(preamble, "\n")
}

func known(name string) bool {
	for _, s := range sectionOrder {
		if s == name {
			return true
		}
	}
	return false
}

func inOrder(names []string) bool {
	pos := -1
	for _, n := range names {
		for i, s := range sectionOrder {
			if s == n {
				if i < pos {
					return false
				}
				pos = i
			}
		}
	}
	return true
}

// isSubheading matches markdown headings, bold labels and "Label:" lines
// such as "Segurança da Embalagem:".
func isSubheading(line string) bool {
	if strings.HasPrefix(line, "#") {
		return true
	}
	if strings.HasPrefix(line, "**") && strings.HasSuffix(strings.TrimSuffix(line, ":"), "**") {
		return true
	}
	return strings.HasSuffix(line, ":") && utf8.RuneCountInString(line) <= 40
}

func joinLines(lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " ")
}
