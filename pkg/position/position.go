package position

import (
	"fmt"
	"strings"

	"github.com/apparentlymart/go-textseg/v13/textseg"
)

// Place is a zero-based line and character pair.
type Place struct {
	Line      int
	Character int
}

func (p Place) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

type Range struct {
	Start Place
	End   Place
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// RawPosition represents a position in the source text
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int
	// Text is the actual text at this position
	Text string
}

// ID returns a unique identifier for this position based on offset and text
func (p RawPosition) ID() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

// Length returns the length of the text at this position
func (p RawPosition) Length() int {
	return len(p.Text)
}

func NewBasicPosition(text string, offset int) RawPosition {
	return RawPosition{Text: text, Offset: offset}
}

// NewRawPositionFromLineAndColumn converts a zero-based line and byte column into a
// position inside fileText.
func NewRawPositionFromLineAndColumn(line, col int, text, fileText string) RawPosition {
	split := strings.Split(fileText, "\n")
	offset := 0
	for i := 0; i < line && i < len(split); i++ {
		offset += len(split[i]) + 1
	}
	offset += col
	return RawPosition{Text: text, Offset: offset}
}

// TextRange returns the byte range covered by the position.
func (p RawPosition) TextRange() TextRange {
	return NewTextRange(p.Offset, p.Offset+p.Length())
}

func (p RawPosition) HasRangeOverlapWith(start RawPosition) bool {
	startOffset := start.Offset
	endOffset := startOffset + start.Length()

	posOffset := p.Offset
	posEndOffset := posOffset + p.Length()

	// a zero-length position overlaps if it falls within the other range
	if p.Length() == 0 {
		return posOffset >= startOffset && posOffset <= endOffset
	}
	if start.Length() == 0 {
		return startOffset >= posOffset && startOffset <= posEndOffset
	}

	return startOffset < posEndOffset && endOffset > posOffset
}

// GetLineAndColumn calculates the zero-based line and column of the position in text.
// Columns count grapheme clusters, so "é" written as e + U+0301 is one column.
func (p RawPosition) GetLineAndColumn(text string) (line, col int) {
	return LineAndColumn(text, p.Offset, 1)
}

func (p RawPosition) GetEndPosition() RawPosition {
	return RawPosition{
		Text:   "",
		Offset: p.Offset + p.Length(),
	}
}

// GetRange calculates the line/column range for a RawPosition
func (p RawPosition) GetRange(fileText string) Range {
	startLine, startCol := p.GetLineAndColumn(fileText)
	endLine, endCol := p.GetEndPosition().GetLineAndColumn(fileText)
	return Range{
		Start: Place{Line: startLine, Character: startCol},
		End:   Place{Line: endLine, Character: endCol},
	}
}

func (p RawPosition) String() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

type RawPositionArray []RawPosition

func (me RawPositionArray) ToStrings() []string {
	var texts []string
	for _, pos := range me {
		texts = append(texts, pos.String())
	}
	return texts
}

// LineAndColumn returns the zero-based line and display column of offset in text.
// Offsets past the end of text are clamped. A tab advances the column to the next
// multiple of tabWidth; a tabWidth below 1 counts a tab as one column.
func LineAndColumn(text string, offset int, tabWidth int) (line, col int) {
	if offset > len(text) {
		offset = len(text)
	}
	if offset <= 0 {
		return 0, 0
	}

	lineStart := 0
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}

	return line, displayWidth(text[lineStart:offset], tabWidth)
}

func displayWidth(segment string, tabWidth int) int {
	if tabWidth < 1 {
		tabWidth = 1
	}

	col := 0
	for len(segment) > 0 {
		idx := strings.IndexByte(segment, '\t')
		chunk := segment
		if idx >= 0 {
			chunk = segment[:idx]
		}

		n, err := textseg.TokenCount([]byte(chunk), textseg.ScanGraphemeClusters)
		if err != nil {
			n = len(chunk)
		}
		col += n

		if idx < 0 {
			break
		}
		col += tabWidth - (col % tabWidth)
		segment = segment[idx+1:]
	}

	return col
}
