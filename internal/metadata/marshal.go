package metadata

import (
	"strings"
)

// Marshal serializes the metadata back to "key=value" lines, with a
// "# Name" header before each named section. Parsing the result yields the
// same mapping.
func (m *Metadata) Marshal() string {
	var b strings.Builder

	for i, s := range m.Sections() {
		if s.Name != "" {
			if i > 0 {
				b.WriteString("\n")
			}

			b.WriteString(sectionMarker)
			b.WriteString(" ")
			b.WriteString(s.Name)
			b.WriteString("\n")
		}

		for _, e := range s.Entries {
			b.WriteString(e.Key)
			b.WriteString(keyValueSep)
			b.WriteString(e.Value)
			b.WriteString("\n")
		}
	}

	return b.String()
}
