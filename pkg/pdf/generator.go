package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// Row is a label/value pair rendered on one line
type Row struct {
	Label string
	Value string
}

// Section groups rows under a heading
type Section struct {
	Heading string
	Rows    []Row
}

// Document describes a single-page summary document
type Document struct {
	Title    string
	Subtitle string
	Sections []Section
	Footer   string
}

type Generator interface {
	Generate(ctx context.Context, doc Document) (io.ReadSeeker, error)
}

type gofpdfGenerator struct {
	pageSize   string
	fontFamily string
}

func NewGenerator() Generator {
	return &gofpdfGenerator{
		pageSize:   "A4",
		fontFamily: "Arial",
	}
}

func (g *gofpdfGenerator) Generate(ctx context.Context, doc Document) (io.ReadSeeker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", g.pageSize, "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont(g.fontFamily, "B", 18)
	pdf.CellFormat(0, 12, doc.Title, "", 1, "C", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont(g.fontFamily, "", 12)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 8, doc.Subtitle, "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(6)

	for _, section := range doc.Sections {
		pdf.SetFont(g.fontFamily, "B", 13)
		pdf.CellFormat(0, 9, section.Heading, "B", 1, "L", false, 0, "")
		pdf.Ln(2)
		pdf.SetFont(g.fontFamily, "", 10)
		for _, row := range section.Rows {
			pdf.SetFont(g.fontFamily, "B", 10)
			pdf.CellFormat(55, 7, row.Label, "", 0, "L", false, 0, "")
			pdf.SetFont(g.fontFamily, "", 10)
			pdf.MultiCell(0, 7, row.Value, "", "L", false)
		}
		pdf.Ln(4)
	}

	if doc.Footer != "" {
		pdf.SetFont(g.fontFamily, "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, doc.Footer, "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return bytes.NewReader(buf.Bytes()), nil
}
