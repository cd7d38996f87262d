package position

import "fmt"

// TextRange is a half-open byte range [Start, End) in a source text.
type TextRange struct {
	Start int
	End   int
}

func NewTextRange(start, end int) TextRange {
	if end < start {
		start, end = end, start
	}
	return TextRange{Start: start, End: end}
}

func (r TextRange) Len() int {
	return r.End - r.Start
}

func (r TextRange) IsEmpty() bool {
	return r.Start == r.End
}

// Contains reports whether offset lies inside the range. The end offset is included so
// that a caret placed right after a token still hits it.
func (r TextRange) Contains(offset int) bool {
	return offset >= r.Start && offset <= r.End
}

func (r TextRange) ContainsRange(other TextRange) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Union returns the smallest range covering both r and other.
func (r TextRange) Union(other TextRange) TextRange {
	return NewTextRange(min(r.Start, other.Start), max(r.End, other.End))
}

// Slice returns the text covered by the range, clamped to text.
func (r TextRange) Slice(text string) string {
	start, end := max(r.Start, 0), min(r.End, len(text))
	if start >= end {
		return ""
	}
	return text[start:end]
}

// RawPosition converts the range into a RawPosition over text.
func (r TextRange) RawPosition(text string) RawPosition {
	return RawPosition{Offset: r.Start, Text: r.Slice(text)}
}

func (r TextRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
