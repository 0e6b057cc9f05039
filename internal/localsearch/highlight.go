package localsearch

import "github.com/okieraised/points-of-interests/internal/models"

// Span is a run of text sharing one style. Start and End are rune offsets.
type Span struct {
	Text        string `json:"text"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Highlighted bool   `json:"highlighted"`
	// Source is the index of the range that styled this run last, or -1 for plain text.
	Source int `json:"source"`
}

// StyledText is text split into consecutive spans covering it exactly.
type StyledText struct {
	Text  string `json:"text"`
	Spans []Span `json:"spans"`
}

// Highlight applies ranges to text in order. Overlaps are allowed and the range
// applied last wins for the runes it covers. Ranges are clamped to the text.
func Highlight(text string, ranges []models.Range) StyledText {
	runes := []rune(text)
	if len(runes) == 0 {
		return StyledText{Text: text}
	}

	source := make([]int, len(runes))
	for i := range source {
		source[i] = -1
	}
	for i, r := range ranges {
		start, end := max(r.Start, 0), min(r.End, len(runes))
		for j := start; j < end; j++ {
			source[j] = i
		}
	}

	var spans []Span
	begin := 0
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && source[i] == source[begin] {
			continue
		}
		spans = append(spans, Span{
			Text:        string(runes[begin:i]),
			Start:       begin,
			End:         i,
			Highlighted: source[begin] >= 0,
			Source:      source[begin],
		})
		begin = i
	}

	return StyledText{Text: text, Spans: spans}
}

// HighlightedText returns only the highlighted fragments, in order.
func (s StyledText) HighlightedText() []string {
	var out []string
	for _, span := range s.Spans {
		if span.Highlighted {
			out = append(out, span.Text)
		}
	}
	return out
}
