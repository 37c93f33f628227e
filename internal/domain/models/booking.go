package models

// Booking rows are created only by the booking transaction and never
// updated afterwards.
type Booking struct {
	ID            int64  `json:"booking_id"`
	CitizenID     int64  `json:"citizen_id"`
	BusID         int64  `json:"bus_id"`
	VariantID     int64  `json:"route_variant_id"`
	SrcStopID     int64  `json:"src_stop_id"`
	DstStopID     int64  `json:"dst_stop_id"`
	SeatNumber    int    `json:"seat_number"`
	TravelDate    string `json:"travel_date"`
	Fare          int64  `json:"fare"`
	PaymentMethod string `json:"payment_method"`
}

// BusOption is one search result for a src->dst segment query, ordered by
// departure time ascending.
type BusOption struct {
	BusID            int64  `json:"bus_id"`
	BusName          string `json:"bus_name"`
	TotalSeats       int    `json:"total_seats"`
	RouteID          int64  `json:"route_id"`
	RouteName        string `json:"route_name"`
	VariantID        int64  `json:"route_variant_id"`
	VariantName      string `json:"variant_name"`
	SrcDepartureTime string `json:"src_departure_time,omitempty"`
	DstArrivalTime   string `json:"dst_arrival_time,omitempty"`
	SectionStops     string `json:"section_stops"`
	Fare             int64  `json:"fare"`
}

// BookingRecord is a booking joined with its stops and payment for the
// citizen's history views.
type BookingRecord struct {
	BookingID     int64  `json:"booking_id"`
	BusID         int64  `json:"bus_id"`
	BusName       string `json:"bus_name"`
	CitizenName   string `json:"citizen_name"`
	SourceStop    string `json:"source_stop"`
	DestStop      string `json:"destination_stop"`
	SeatNumber    int    `json:"seat_number"`
	TravelDate    string `json:"travel_date"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	PaymentStatus string `json:"payment_status"`
}

// PaymentRecord is one row of the admin payment-history rollup.
type PaymentRecord struct {
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	PaymentDate   string `json:"payment_date"`
	Status        string `json:"status"`
}
