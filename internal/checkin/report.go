package checkin

import (
	"bytes"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// Summary holds the derived attendance counts for one event.
type Summary struct {
	Total      int `json:"total"`
	Members    int `json:"members"`
	Guests     int `json:"guests"`
	NonMembers int `json:"nonMembers"`
}

// Summarize derives counts from a record list. Non-members are whatever is
// left after members and guests, so total = members + guests + nonMembers
// always holds.
func Summarize(records []Record) Summary {
	var s Summary
	s.Total = len(records)
	for _, rec := range records {
		switch {
		case rec.IsMember:
			s.Members++
		case rec.IsGuest:
			s.Guests++
		}
	}
	s.NonMembers = s.Total - s.Members - s.Guests
	return s
}

func recordType(rec Record) string {
	switch {
	case rec.IsGuest:
		return "Guest"
	case rec.IsMember:
		return "Member"
	default:
		return "Non-Member"
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// RenderReportPDF produces the check-in report: title, date, the four
// summary lines, and a table of records in list order.
func RenderReportPDF(evt Event, records []Record) ([]byte, error) {
	sum := Summarize(records)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Check-in Report: "+evt.Name)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, "Date: "+evt.Date.Format("01/02/2006"))
	pdf.Ln(10)

	pdf.Cell(0, 8, "Summary:")
	pdf.Ln(8)
	for _, line := range []string{
		"Total Check-ins: " + strconv.Itoa(sum.Total),
		"Total Members: " + strconv.Itoa(sum.Members),
		"Total Non-Members: " + strconv.Itoa(sum.NonMembers),
		"Total Guests: " + strconv.Itoa(sum.Guests),
	} {
		pdf.Cell(0, 8, line)
		pdf.Ln(8)
	}
	pdf.Ln(4)

	widths := []float64{50, 25, 28, 30, 57}
	headers := []string{"Name", "CWID", "Type", "Time", "Email"}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, rec := range records {
		cells := []string{
			rec.Name,
			orNA(rec.CWID),
			recordType(rec),
			rec.CheckedAt.Format("3:04:05 PM"),
			orNA(rec.Email),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 8, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
