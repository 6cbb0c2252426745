package ticket

import (
	"ticketgenie/internal/config"
	"ticketgenie/internal/models"
)

// Renderer produces the final ticket artifact: the encrypted QR embedded
// into the PDF stub.
type Renderer struct {
	qr  *QRGenerator
	pdf *PDFGenerator
}

func NewRenderer(cfg config.TicketConfig) *Renderer {
	return &Renderer{
		qr:  NewQRGenerator(cfg.QRSecret),
		pdf: NewPDFGenerator(cfg.FontPath),
	}
}

func (r *Renderer) Render(receipt models.BookingReceipt) ([]byte, error) {
	qrCode, err := r.qr.GenerateEncryptedQR(receipt)
	if err != nil {
		return nil, err
	}
	return r.pdf.Generate(receipt, qrCode)
}
