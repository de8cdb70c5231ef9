package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Generator renders pipeline documents; an interface so tests can stub it.
type Generator interface {
	GeneratePrecontract(data PrecontractData) (string, error)
}

// PrecontractData is the verified plan/price snapshot to render.
type PrecontractData struct {
	LeadID      string
	CompanyName string
	PlanID      string
	Addons      []string
	Total       decimal.Decimal
	VerifiedAt  time.Time
}

// DocumentGenerator writes PDFs under a root directory.
type DocumentGenerator struct {
	RootDir  string
	FontPath string // optional TTF for accented characters; Helvetica otherwise
	fontName string
}

func NewDocumentGenerator(rootDir, fontPath string) *DocumentGenerator {
	g := &DocumentGenerator{
		RootDir:  filepath.Clean(rootDir),
		FontPath: fontPath,
		fontName: "Helvetica",
	}
	return g
}

func (g *DocumentGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(g.RootDir, filepath.Base(filename)), nil
}

func (g *DocumentGenerator) setupFont(pdf *gofpdf.Fpdf) string {
	if g.FontPath == "" {
		return g.fontName
	}
	if _, err := os.Stat(g.FontPath); err != nil {
		return g.fontName
	}
	pdf.AddUTF8Font("custom", "", g.FontPath)
	pdf.AddUTF8Font("custom", "B", g.FontPath)
	return "custom"
}

func (g *DocumentGenerator) GeneratePrecontract(data PrecontractData) (string, error) {
	filename := fmt.Sprintf("precontract_%s.pdf", data.LeadID)
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Precontracte %s", data.CompanyName), false)
	pdf.SetAuthor("Ofertalia", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	font := g.setupFont(pdf)
	pdf.AddPage()

	pdf.SetFont(font, "B", 18)
	pdf.CellFormat(0, 10, "PRECONTRACTE", "", 1, "C", false, 0, "")

	pdf.SetFont(font, "", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("Lead %s  -  %s", data.LeadID, data.VerifiedAt.Format("02.01.2006")), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Empresa", data.CompanyName},
		{"Pla", data.PlanID},
		{"Complements", strings.Join(data.Addons, ", ")},
		{"Total negociat", data.Total.StringFixed(2) + " EUR"},
	}
	for _, row := range rows {
		pdf.SetFont(font, "B", 11)
		pdf.CellFormat(50, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont(font, "", 11)
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}
