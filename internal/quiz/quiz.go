// Package quiz turns the free-text quiz response from the generative service
// into ordered question/answer pairs. The model is asked to emit alternating
// question and answer lines; this parser pairs them up positionally and does
// not attempt to validate that a "question" line actually asks anything.
package quiz

import "strings"

// Item is one multiple-choice question with its answer line.
// Question text may contain inline choice labels ("A) ... B) ...").
type Item struct {
	Question string
	Answer   string
}

// Parse splits raw model output into lines, drops lines that are empty after
// trimming surrounding whitespace, and pairs the remainder as alternating
// question/answer lines starting with a question. A trailing unpaired line is
// dropped — the item count is always floor(N/2) for N non-empty lines.
// Interior whitespace is preserved verbatim.
func Parse(raw string) []Item {
	var lines []string

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		lines = append(lines, trimmed)
	}

	items := make([]Item, 0, len(lines)/2)

	for i := 0; i+1 < len(lines); i += 2 {
		items = append(items, Item{
			Question: lines[i],
			Answer:   lines[i+1],
		})
	}

	return items
}
