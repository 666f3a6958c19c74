package infra

// pdf.go: sale receipt rendering with go-pdf/fpdf.
// A7-ish thermal receipt layout: business header, sale reference and date,
// one product line, total and payment method. Amounts arrive pre-formatted
// so this file stays free of currency rules.

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// SaleReceipt is everything printed on a receipt.
type SaleReceipt struct {
	BusinessName  string
	SaleID        string
	Reference     string
	SoldAt        time.Time
	ProductName   string
	SKU           string
	Quantity      int
	UnitPrice     string
	Total         string
	PaymentMethod string
}

// WriteSaleReceiptPDF renders r as a PDF into w.
func WriteSaleReceiptPDF(w io.Writer, r SaleReceipt) error {
	// 74mm × 105mm, close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetTitle("Receipt "+r.SaleID, false)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, r.BusinessName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Sale info ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(contentW, 4, "Sale "+shortID(r.SaleID), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, r.SoldAt.Format("2006-01-02  15:04"), "", 1, "L", false, 0, "")
	if r.Reference != "" {
		pdf.CellFormat(contentW, 4, "Ref: "+r.Reference, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Line ─────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Price", "B", 1, "R", false, 0, "")

	name := r.ProductName
	if len(name) > 22 {
		name = name[:21] + "."
	}
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", r.Quantity), "", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, r.UnitPrice, "", 1, "R", false, 0, "")
	if r.SKU != "" {
		pdf.SetFont("Helvetica", "I", 6)
		pdf.CellFormat(contentW, 4, "SKU "+r.SKU, "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, r.Total, "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Paid by "+r.PaymentMethod, "", 1, "L", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you!", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render receipt: %w", err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
