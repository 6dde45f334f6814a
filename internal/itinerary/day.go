package itinerary

import (
	"regexp"
	"strings"
	"time"
)

// bulletPattern matches a leading "- " list marker at the start of a line.
var bulletPattern = regexp.MustCompile(`(?m)^[ \t]*-[ \t]+`)

// eveningNoise is a prompt template phrase models tend to echo back.
const eveningNoise = "Food recommendation:"

// ParseDay builds a Day from one day's raw text. Missing or malformed
// sections produce empty slots and an empty cost.
func ParseDay(text string, dayNumber int, date time.Time) Day {
	sections := ExtractSections(text)

	day := Day{
		DayNumber: dayNumber,
		Date:      date,
		Activities: Activities{
			Morning:   splitBullets(sections[SectionMorning]),
			Afternoon: splitBullets(sections[SectionAfternoon]),
			Evening:   splitEvening(sections[SectionEvening]),
		},
		Tips: splitBullets(sections[SectionTips]),
	}

	if cost, ok := sections[SectionCost]; ok {
		day.EstimatedCost = firstLine(cost)
	}

	return day
}

func splitBullets(s string) []string {
	items := []string{}
	for _, part := range bulletPattern.Split(s, -1) {
		if item := strings.Join(strings.Fields(part), " "); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// splitEvening is line oriented: models often drop bullet formatting in the
// last section, so plain lines count as activities too.
func splitEvening(s string) []string {
	items := []string{}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "**"):
			continue
		case strings.HasPrefix(line, "-"), strings.HasPrefix(line, "*"):
			line = strings.TrimSpace(line[1:])
		case strings.Contains(line, eveningNoise):
			continue
		}
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "*"))
}
