package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"sevaportal/internal/domain"
	"sevaportal/internal/repositories"
	"sevaportal/internal/utils"
)

// TicketService renders the downloadable e-ticket PDF.
type TicketService struct {
	Bookings repositories.BookingRepository
}

func NewTicketService(db *sql.DB) TicketService {
	return TicketService{Bookings: repositories.BookingRepository{DB: db}}
}

// ETicketPDF builds the PDF for the booking. Only the booking's owner may
// download it.
func (s TicketService) ETicketPDF(ctx context.Context, bookingID, citizenID int64) ([]byte, string, error) {
	info, err := s.Bookings.Ticket(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if info.CitizenID != citizenID {
		return nil, "", domain.ForbiddenError{Msg: "ticket belongs to another citizen"}
	}

	pdf, err := buildETicketPDF(info)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("e-ticket-%d.pdf", info.BookingID)
	return pdf, filename, nil
}

func buildETicketPDF(info repositories.TicketInfo) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Bus E-Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Bus E-Ticket", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Booking #%d", info.BookingID), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := []struct {
		label string
		value string
	}{
		{"Passenger", info.CitizenName},
		{"Bus", info.BusName},
		{"From", info.SourceStop},
		{"To", info.DestStop},
		{"Travel Date", info.TravelDate},
		{"Seat Number", fmt.Sprintf("%d", info.SeatNumber)},
		{"Fare", utils.FormatRupee(info.Fare)},
		{"Payment Method", info.PaymentMethod},
	}

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, 8, row.label, "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(120, 8, row.value, "1", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Please carry a valid photo ID during the journey. The seat is reserved only for the section between the boarding and alighting stops printed above.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
