// Package report renders the admin order reports as PDF.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// ItemLine is one order line in a detailed report.
type ItemLine struct {
	Name     string
	Type     string
	Price    decimal.Decimal
	Quantity int32
}

// OrderData is one order as it appears in the report.
type OrderData struct {
	Reference    string
	CustomerName string
	Phone        string
	Location     string
	TimeSlot     string
	DeliveryDate time.Time
	Status       string
	Subtotal     decimal.Decimal
	DeliveryFee  decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	Items        []ItemLine
}

// Data is the full input for one report run.
type Data struct {
	Detailed       bool
	FilterDate     string
	FilterStatus   string
	FilterLocation string
	GeneratedBy    string
	Now            time.Time
	Orders         []OrderData
}

// Filename derives the download name from the report type and filters:
// {summary|detailed}_orders_{yyyymmdd}[_{date}][_{location}].pdf
func Filename(d Data) string {
	kind := "summary"
	if d.Detailed {
		kind = "detailed"
	}
	parts := []string{kind, "orders", d.Now.Format("20060102")}
	if d.FilterDate != "" {
		parts = append(parts, strings.ReplaceAll(d.FilterDate, "-", ""))
	}
	if d.FilterLocation != "" {
		loc := strings.ToLower(strings.ReplaceAll(d.FilterLocation, " ", "_"))
		parts = append(parts, loc)
	}
	return strings.Join(parts, "_") + ".pdf"
}

// Generate writes the PDF to w.
func Generate(w io.Writer, d Data) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	writeHeader(pdf, d)

	if d.Detailed {
		writeDetailed(pdf, d)
	} else {
		writeSummary(pdf, d)
	}

	writeTotals(pdf, d)

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5,
		fmt.Sprintf("Generated by %s on %s", d.GeneratedBy, d.Now.Format("Jan 2, 2006 3:04 PM")),
		"", 1, "L", false, 0, "")

	return pdf.Output(w)
}

func writeHeader(pdf *gofpdf.Fpdf, d Data) {
	title := "Order Summary Report"
	if d.Detailed {
		title = "Detailed Order Report"
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	filters := []string{}
	if d.FilterDate != "" {
		filters = append(filters, "Date: "+d.FilterDate)
	}
	if d.FilterStatus != "" {
		filters = append(filters, "Status: "+d.FilterStatus)
	}
	if d.FilterLocation != "" {
		filters = append(filters, "Location: "+d.FilterLocation)
	}
	if len(filters) == 0 {
		filters = append(filters, "All orders")
	}
	pdf.CellFormat(0, 6, strings.Join(filters, "  |  "), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("%d order(s)", len(d.Orders)), "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func writeSummary(pdf *gofpdf.Fpdf, d Data) {
	widths := []float64{25, 40, 35, 35, 20, 15, 20}
	headers := []string{"Order", "Customer", "Location", "Time Slot", "Date", "Items", "Total"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, o := range d.Orders {
		var units int32
		for _, it := range o.Items {
			units += it.Quantity
		}
		cells := []string{
			o.Reference,
			o.CustomerName,
			o.Location,
			o.TimeSlot,
			o.DeliveryDate.Format("Jan 2"),
			fmt.Sprintf("%d", units),
			o.Total.StringFixed(2),
		}
		for i, c := range cells {
			align := "L"
			if i >= 4 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func writeDetailed(pdf *gofpdf.Fpdf, d Data) {
	for _, o := range d.Orders {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, fmt.Sprintf("Order %s - %s", o.Reference, o.CustomerName), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5,
			fmt.Sprintf("%s  |  %s  |  %s  |  %s  |  %s",
				o.DeliveryDate.Format("Mon, Jan 2"), o.TimeSlot, o.Location, o.Phone, o.Status),
			"", 1, "L", false, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(80, 6, "Item", "1", 0, "L", true, 0, "")
		pdf.CellFormat(25, 6, "Type", "1", 0, "L", true, 0, "")
		pdf.CellFormat(20, 6, "Qty", "1", 0, "R", true, 0, "")
		pdf.CellFormat(25, 6, "Price", "1", 0, "R", true, 0, "")
		pdf.CellFormat(25, 6, "Amount", "1", 1, "R", true, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		for _, it := range o.Items {
			amount := it.Price.Mul(decimal.NewFromInt32(it.Quantity))
			pdf.CellFormat(80, 6, it.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 6, it.Type, "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%d", it.Quantity), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, it.Price.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, amount.StringFixed(2), "1", 1, "R", false, 0, "")
		}

		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(150, 6, "Order Total", "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, o.Total.StringFixed(2), "1", 1, "R", false, 0, "")
		pdf.Ln(4)
	}
}

func writeTotals(pdf *gofpdf.Fpdf, d Data) {
	subtotal, delivery, tax, total := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, o := range d.Orders {
		subtotal = subtotal.Add(o.Subtotal)
		delivery = delivery.Add(o.DeliveryFee)
		tax = tax.Add(o.Tax)
		total = total.Add(o.Total)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	rows := []struct {
		label string
		value decimal.Decimal
	}{
		{"Subtotal", subtotal},
		{"Delivery Fee", delivery},
		{"Tax", tax},
		{"Total", total},
	}
	for _, r := range rows {
		pdf.CellFormat(150, 6, r.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, r.value.StringFixed(2), "", 1, "R", false, 0, "")
	}
}
