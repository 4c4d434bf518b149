package metadata

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

const (
	sectionMarker = "#"
	keyValueSep   = "="
)

// ParseBytes parses metadata from an in-memory file.
func ParseBytes(src []byte) (Metadata, error) {
	return Parse(bytes.NewReader(src))
}

// Parse reads key=value lines from r.
//
// A non-blank line that is not a section marker must contain exactly one '='
// with a non-empty key; anything else fails with [ErrFormat]. A marker with
// no name ("#" alone) is a plain comment and does not change the section.
// Re-opening a section name appends to the existing section. Keys must be
// unique within a section.
func Parse(r io.Reader) (Metadata, error) {
	p := newParser()

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		err := p.line(scanner.Text())
		if err != nil {
			return Metadata{}, fmt.Errorf("%w: line %d: %w", ErrFormat, lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return Metadata{}, fmt.Errorf("reading metadata: %w", err)
	}

	return Metadata{sections: p.sections}, nil
}

type parser struct {
	sections []Section
	current  int
	seen     []map[string]struct{}
}

func newParser() *parser {
	return &parser{
		sections: []Section{{Name: ""}},
		seen:     []map[string]struct{}{{}},
	}
}

func (p *parser) line(raw string) error {
	line := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
	if line == "" {
		return nil
	}

	if name, ok := strings.CutPrefix(line, sectionMarker); ok {
		p.openSection(strings.TrimSpace(strings.TrimLeft(name, sectionMarker)))

		return nil
	}

	if strings.Count(line, keyValueSep) != 1 {
		return fmt.Errorf("expected exactly one %q in %q", keyValueSep, line)
	}

	key, value, _ := strings.Cut(line, keyValueSep)
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	if key == "" {
		return fmt.Errorf("empty key in %q", line)
	}

	seen := p.seen[p.current]
	if _, dup := seen[key]; dup {
		return fmt.Errorf("duplicate key %q in section %q", key, p.sections[p.current].Name)
	}

	seen[key] = struct{}{}
	p.sections[p.current].Entries = append(p.sections[p.current].Entries, Entry{Key: key, Value: value})

	return nil
}

func (p *parser) openSection(name string) {
	if name == "" {
		return
	}

	for i := range p.sections {
		if i > 0 && p.sections[i].Name == name {
			p.current = i

			return
		}
	}

	p.sections = append(p.sections, Section{Name: name})
	p.seen = append(p.seen, map[string]struct{}{})
	p.current = len(p.sections) - 1
}
