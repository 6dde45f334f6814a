package itinerary

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dayHeaderPattern matches "DAY 3:", "Day 3 -", "**DAY 3.**" or "## Day 3" at
// the start of a line.
var dayHeaderPattern = regexp.MustCompile(`(?mi)^[ \t>#*]*DAY[ \t]+(\d+)[ \t]*(?:[:.)\-–—*]|$)`)

// inlineHeaderPattern matches an uppercase "DAY 2:" inside a line. It only
// starts a block when it continues the numbering of the header before it.
var inlineHeaderPattern = regexp.MustCompile(`\bDAY[ \t]+(\d+):`)

// ResponseParser turns a complete model response into ordered days.
type ResponseParser struct {
	logger *slog.Logger
}

// NewResponseParser creates a ResponseParser.
func NewResponseParser(logger *slog.Logger) *ResponseParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResponseParser{logger: logger}
}

type dayBlock struct {
	printed int
	body    string
}

// Parse splits text into day blocks and parses at most duration of them.
// Days are numbered by block position and dated from start; the numbers and
// dates printed by the model are ignored. Text without any day header is one
// block. Blank text yields no days.
func (p *ResponseParser) Parse(text string, start time.Time, duration int) []Day {
	if strings.TrimSpace(text) == "" || duration < 1 {
		return nil
	}

	blocks := splitDayBlocks(text)
	if len(blocks) > duration {
		p.logger.Debug("Discarding extra day blocks",
			"blocks", len(blocks), "duration", duration)
		blocks = blocks[:duration]
	}

	days := make([]Day, 0, len(blocks))
	for i, block := range blocks {
		number := i + 1
		if block.printed != 0 && block.printed != number {
			p.logger.Debug("Model day number differs from position",
				"printed", block.printed, "day", number)
		}
		days = append(days, ParseDay(block.body, number, start.AddDate(0, 0, i)))
	}
	return days
}

func splitDayBlocks(text string) []dayBlock {
	headers := findDayHeaders(text)
	if len(headers) == 0 {
		return []dayBlock{{body: text}}
	}

	blocks := make([]dayBlock, 0, len(headers))
	for i, h := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1].start
		}
		blocks = append(blocks, dayBlock{printed: h.printed, body: text[h.end:end]})
	}
	return blocks
}

type dayHeader struct {
	start, end int
	printed    int
}

// findDayHeaders returns the line-start headers merged with the inline ones
// that follow on from them, in text order.
func findDayHeaders(text string) []dayHeader {
	var lineStart []dayHeader
	for _, m := range dayHeaderPattern.FindAllStringSubmatchIndex(text, -1) {
		printed, _ := strconv.Atoi(text[m[2]:m[3]])
		lineStart = append(lineStart, dayHeader{start: m[0], end: m[1], printed: printed})
	}
	inline := inlineHeaderPattern.FindAllStringSubmatchIndex(text, -1)

	headers := make([]dayHeader, 0, len(lineStart))
	next := 0
	for _, m := range inline {
		for next < len(lineStart) && lineStart[next].end <= m[0] {
			headers = append(headers, lineStart[next])
			next++
		}
		if next < len(lineStart) && lineStart[next].start <= m[0] {
			// part of a line-start header
			continue
		}
		if len(headers) == 0 {
			continue
		}
		printed, _ := strconv.Atoi(text[m[2]:m[3]])
		if prev := headers[len(headers)-1].printed; prev == 0 || printed != prev+1 {
			continue
		}
		headers = append(headers, dayHeader{start: m[0], end: m[1], printed: printed})
	}
	return append(headers, lineStart[next:]...)
}
