package ticket

import (
	"bytes"
	"fmt"
	"image/png"
	"math/rand"
	"strings"

	"github.com/signintech/gopdf"

	"ticketgenie/internal/models"
)

// Ticket page size in points, roughly 80mm x 150mm like a printed stub.
var ticketPageSize = gopdf.Rect{W: 227, H: 425}

// PDFGenerator lays out the e-ticket. The seat locator (block/row/seat)
// and the ticket serial are random cosmetic values; they are not persisted
// and carry no meaning beyond the printed stub.
type PDFGenerator struct {
	fontPath string
}

func NewPDFGenerator(fontPath string) *PDFGenerator {
	return &PDFGenerator{fontPath: fontPath}
}

func (g *PDFGenerator) Generate(receipt models.BookingReceipt, qrCode []byte) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: ticketPageSize})
	pdf.AddPage()

	if err := pdf.AddTTFFont("ticket", g.fontPath); err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	if err := addHeader(pdf, receipt); err != nil {
		return nil, err
	}
	if err := addSeatLocator(pdf); err != nil {
		return nil, err
	}
	if err := addShowDetails(pdf, receipt); err != nil {
		return nil, err
	}
	if err := addSerial(pdf); err != nil {
		return nil, err
	}
	if len(qrCode) > 0 {
		addQRCode(pdf, qrCode)
	}

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func addHeader(pdf *gopdf.GoPdf, receipt models.BookingReceipt) error {
	pdf.SetFillColor(190, 30, 45)
	pdf.RectFromUpperLeftWithStyle(0, 0, ticketPageSize.W, 90, "F")

	pdf.SetTextColor(255, 255, 255)
	if err := pdf.SetFont("ticket", "", 12); err != nil {
		return err
	}
	pdf.SetXY(20, 15)
	pdf.Cell(nil, "E-TICKET")

	if err := pdf.SetFont("ticket", "", 20); err != nil {
		return err
	}
	pdf.SetXY(20, 45)
	pdf.Cell(nil, sanitizeText(receipt.Movie))
	return nil
}

func addSeatLocator(pdf *gopdf.GoPdf) error {
	pdf.SetTextColor(0, 0, 0)
	if err := pdf.SetFont("ticket", "", 12); err != nil {
		return err
	}

	block := rand.Intn(5) + 1
	row := rand.Intn(20) + 1
	seat := rand.Intn(50) + 1

	pdf.SetXY(20, 110)
	pdf.Cell(nil, "BLOCK   ROW   SEAT")
	pdf.SetXY(20, 130)
	pdf.Cell(nil, fmt.Sprintf("%02d          %02d       %02d", block, row, seat))
	return nil
}

func addShowDetails(pdf *gopdf.GoPdf, receipt models.BookingReceipt) error {
	if err := pdf.SetFont("ticket", "", 12); err != nil {
		return err
	}
	pdf.SetXY(20, 165)
	pdf.Cell(nil, "DATE            TIME")
	pdf.SetXY(20, 185)
	pdf.Cell(nil, fmt.Sprintf("%s    %s", receipt.ShowDate.Format("02-Jan-2006"), receipt.Showtime))

	pdf.SetXY(20, 215)
	pdf.Cell(nil, fmt.Sprintf("Name: %s", sanitizeText(receipt.Name)))
	pdf.SetXY(20, 235)
	pdf.Cell(nil, fmt.Sprintf("Tickets: %d    Total: %.0f", receipt.TicketCount, receipt.TotalPrice))
	return nil
}

func addSerial(pdf *gopdf.GoPdf) error {
	if err := pdf.SetFont("ticket", "", 10); err != nil {
		return err
	}
	serial := rand.Intn(9000) + 1000
	pdf.SetXY(20, 265)
	pdf.Cell(nil, fmt.Sprintf("TICKET #%d", serial))
	return nil
}

func addQRCode(pdf *gopdf.GoPdf, qrCode []byte) {
	img, err := png.Decode(bytes.NewReader(qrCode))
	if err != nil {
		return
	}
	rect := &gopdf.Rect{W: 100, H: 100}
	_ = pdf.ImageFrom(img, 63, 295, rect)
}

// sanitizeText keeps the character set the PDF font is guaranteed to
// cover, mirroring what the booking flow accepts for names.
func sanitizeText(text string) string {
	var b strings.Builder
	for _, c := range text {
		if c == ' ' || c == '.' || c == ',' || c == '-' ||
			(c >= '0' && c <= '9') ||
			(c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') {
			b.WriteRune(c)
		}
	}
	return b.String()
}
