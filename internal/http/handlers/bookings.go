package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sevaportal/internal/http/middleware"
	"sevaportal/internal/services"
)

// BookingHandler covers the citizen booking flow: purchase, history and
// the e-ticket download.
type BookingHandler struct {
	Bookings services.BookingService
	Tickets  services.TicketService
}

func NewBookingHandler(bookings services.BookingService, tickets services.TicketService) BookingHandler {
	return BookingHandler{Bookings: bookings, Tickets: tickets}
}

type bookRequest struct {
	BusID         int64  `json:"bus_id"`
	SrcStopID     int64  `json:"src_stop_id"`
	DstStopID     int64  `json:"dst_stop_id"`
	SeatNumber    int    `json:"seat_number"`
	TravelDate    string `json:"travel_date"`
	PaymentMethod string `json:"payment_method"`
}

// POST /api/bookings
func (h BookingHandler) Book(c *gin.Context) {
	citizenID, _ := middleware.GetCitizenID(c)
	var in bookRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	res, err := h.Bookings.BookSeat(c.Request.Context(), services.BookRequest{
		CitizenID:     citizenID,
		BusID:         in.BusID,
		SrcStopID:     in.SrcStopID,
		DstStopID:     in.DstStopID,
		SeatNumber:    in.SeatNumber,
		TravelDate:    in.TravelDate,
		PaymentMethod: in.PaymentMethod,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "booking confirmed", "booking": res})
}

// GET /api/bookings/upcoming
func (h BookingHandler) Upcoming(c *gin.Context) {
	citizenID, _ := middleware.GetCitizenID(c)
	records, err := h.Bookings.UpcomingBookings(c.Request.Context(), citizenID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": records})
}

// GET /api/bookings/past
func (h BookingHandler) Past(c *gin.Context) {
	citizenID, _ := middleware.GetCitizenID(c)
	records, err := h.Bookings.PastBookings(c.Request.Context(), citizenID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": records})
}

// GET /api/bookings/:id/e-ticket
func (h BookingHandler) ETicket(c *gin.Context) {
	citizenID, _ := middleware.GetCitizenID(c)
	bookingID, ok := PathID(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := h.Tickets.ETicketPDF(c.Request.Context(), bookingID, citizenID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
