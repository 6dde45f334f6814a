package itinerary

import "strings"

// Section identifies one labelled part of a day's text.
type Section int

const (
	SectionMorning Section = iota
	SectionAfternoon
	SectionEvening
	SectionTips
	SectionCost
)

// sectionLabels is the fixed boundary grammar, indexed by Section.
var sectionLabels = [...]string{
	SectionMorning:   "MORNING:",
	SectionAfternoon: "AFTERNOON:",
	SectionEvening:   "EVENING:",
	SectionTips:      "DAILY TIPS:",
	SectionCost:      "ESTIMATED DAILY COST:",
}

func (s Section) String() string {
	return strings.TrimSuffix(sectionLabels[s], ":")
}

// ExtractSections splits one day's text into its labelled sections. Each
// section runs from its label to the closest label occurring after it, in
// whatever order the labels appear. Absent labels have no entry.
func ExtractSections(text string) map[Section]string {
	sections := make(map[Section]string, len(sectionLabels))

	for s, label := range sectionLabels {
		idx := strings.Index(text, label)
		if idx < 0 {
			continue
		}
		start := idx + len(label)

		end := len(text)
		for _, other := range sectionLabels {
			if next := strings.Index(text[start:], other); next >= 0 && start+next < end {
				end = start + next
			}
		}

		sections[Section(s)] = cleanSection(text[start:end])
	}

	return sections
}

// cleanSection drops surrounding whitespace and the markdown emphasis models
// like to wrap around labels ("**MORNING:**"). Only a "**" standing alone at
// either end is label emphasis; bold inside an item is kept.
func cleanSection(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "**"); ok && (rest == "" || isSpace(rest[0])) {
		s = rest
	}
	if rest, ok := strings.CutSuffix(s, "**"); ok && (rest == "" || isSpace(rest[len(rest)-1])) {
		s = rest
	}
	return strings.TrimSpace(s)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
