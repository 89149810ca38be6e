// Package pdftext decodes positioned text fragments from PDF content streams
// using pdfcpu. It tracks the text-positioning operators (Tm, Td, TD, TL, T*)
// so each shown string carries the x/y where it was painted; the layout
// package turns those coordinates back into reading-order lines.
package pdftext

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/invoices-tracker/internal/layout"
)

// ExtractFragments reads a PDF from rs and returns one fragment slice per
// page, in page order. Pages whose content cannot be decoded yield an empty
// slice rather than failing the document.
func ExtractFragments(rs io.ReadSeeker) ([][]layout.Fragment, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make([][]layout.Fragment, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil {
			pages = append(pages, nil)
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			pages = append(pages, nil)
			continue
		}
		pages = append(pages, fragmentsFromStream(data))
	}
	return pages, nil
}

// ExtractFile is the path-based variant of ExtractFragments.
func ExtractFile(path string) ([][]layout.Fragment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ExtractFragments(f)
}

// ExtractDocument decodes a PDF and assembles the reconstructed document
// text in one step.
func ExtractDocument(rs io.ReadSeeker) (layout.Document, error) {
	pages, err := ExtractFragments(rs)
	if err != nil {
		return layout.Document{}, err
	}
	return layout.Assemble(pages), nil
}

// textState carries the positioning state of one content stream. The text
// line matrix is reduced to its translation: glyph-level scaling and rotation
// do not matter for band grouping.
type textState struct {
	x, y         float64
	lineX, lineY float64
	leading      float64
}

func (s *textState) setMatrix(e, f float64) {
	s.lineX, s.lineY = e, f
	s.x, s.y = e, f
}

func (s *textState) move(tx, ty float64) {
	s.lineX += tx
	s.lineY += ty
	s.x, s.y = s.lineX, s.lineY
}

func (s *textState) nextLine() {
	s.lineY -= s.leading
	s.x, s.y = s.lineX, s.lineY
}

// fragmentsFromStream walks one page's content stream and emits a fragment
// for every shown string at the current text position.
func fragmentsFromStream(data []byte) []layout.Fragment {
	var (
		frags   []layout.Fragment
		state   textState
		numbers []float64
		strs    []string
	)

	emit := func() {
		for _, s := range strs {
			if s == "" || !utf8.ValidString(s) {
				continue
			}
			frags = append(frags, layout.Fragment{Text: s, X: state.x, Y: state.y})
		}
	}

	tok := newTokenizer(data)
	for {
		t, ok := tok.next()
		if !ok {
			break
		}
		switch t.kind {
		case tokNumber:
			numbers = append(numbers, t.num)
			continue
		case tokString:
			strs = append(strs, t.str)
			continue
		case tokName:
			continue
		case tokOperator:
			switch t.str {
			case "BT":
				state = textState{}
			case "Tm":
				if len(numbers) >= 6 {
					state.setMatrix(numbers[len(numbers)-2], numbers[len(numbers)-1])
				}
			case "Td":
				if len(numbers) >= 2 {
					state.move(numbers[len(numbers)-2], numbers[len(numbers)-1])
				}
			case "TD":
				if len(numbers) >= 2 {
					ty := numbers[len(numbers)-1]
					state.leading = -ty
					state.move(numbers[len(numbers)-2], ty)
				}
			case "TL":
				if len(numbers) >= 1 {
					state.leading = numbers[len(numbers)-1]
				}
			case "T*":
				state.nextLine()
			case "Tj", "TJ":
				emit()
			case "'":
				state.nextLine()
				emit()
			case "\"":
				state.nextLine()
				emit()
			}
		}
		numbers = numbers[:0]
		strs = strs[:0]
	}
	return frags
}
