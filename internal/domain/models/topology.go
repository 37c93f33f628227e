package models

// Stop is a named point buses can serve. Names are stored trimmed and
// lower-cased; a stop may not be deleted while a route variant lists it.
type Stop struct {
	ID   int64  `json:"stop_id"`
	Name string `json:"stop_name"`
}

type Route struct {
	ID   int64  `json:"route_id"`
	Name string `json:"route_name"`
}

// RouteVariant is one concrete ordered stop sequence of a route. Its
// identity is the sequence itself; Name is the derived "_"-joined stop-id
// label kept for display and uniqueness checks.
type RouteVariant struct {
	ID            int64         `json:"variant_id"`
	RouteID       int64         `json:"route_id"`
	Name          string        `json:"variant_name"`
	Stops         []VariantStop `json:"stops,omitempty"`
	StopsReadable string        `json:"stops_readable,omitempty"`
}

// VariantStop is one (stop, order) entry of a variant. Orders are dense,
// 1-based and strictly increasing.
type VariantStop struct {
	StopID   int64  `json:"stop_id"`
	StopName string `json:"stop_name,omitempty"`
	Order    int    `json:"stop_order"`
}

// Bus binds to exactly one route variant; rebinding is not supported.
type Bus struct {
	ID         int64  `json:"bus_id"`
	Name       string `json:"bus_name"`
	TotalSeats int    `json:"total_seats"`
	RouteID    int64  `json:"route_id"`
	VariantID  int64  `json:"route_variant_id"`
}

// BusDetail is a bus with its route/variant context and schedule, as
// rendered by the listing endpoints.
type BusDetail struct {
	Bus
	RouteName string          `json:"route_name"`
	Stops     string          `json:"stops,omitempty"`
	Schedule  []ScheduleEntry `json:"schedule,omitempty"`
}

// ScheduleEntry is one per-stop timing row of a bus's schedule. Times are
// "HH:MM:SS" strings matching the busschedule columns.
type ScheduleEntry struct {
	StopID        int64  `json:"stop_id"`
	StopName      string `json:"stop_name,omitempty"`
	ArrivalTime   string `json:"arrival_time"`
	DepartureTime string `json:"departure_time"`
}
