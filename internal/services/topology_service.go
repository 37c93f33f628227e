package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
	"sevaportal/internal/repositories"
	"sevaportal/internal/utils"
)

// TopologyService administers stops, routes, route variants, buses and
// schedules. Structural mutations that could strand committed bookings
// run inside a transaction with a future-booking guard.
type TopologyService struct {
	DB       *sql.DB
	Stops    repositories.StopRepository
	Routes   repositories.RouteRepository
	Buses    repositories.BusRepository
	Bookings repositories.BookingRepository
}

func NewTopologyService(db *sql.DB) TopologyService {
	return TopologyService{
		DB:       db,
		Stops:    repositories.StopRepository{DB: db},
		Routes:   repositories.RouteRepository{DB: db},
		Buses:    repositories.BusRepository{DB: db},
		Bookings: repositories.BookingRepository{DB: db},
	}
}

func (s TopologyService) ListStops(ctx context.Context) ([]models.Stop, error) {
	return s.Stops.List(ctx)
}

func (s TopologyService) AddStop(ctx context.Context, name string) (models.Stop, error) {
	name = utils.NormalizeName(name)
	if name == "" {
		return models.Stop{}, domain.ValidationError{Field: "stop_name", Msg: "must not be empty"}
	}
	exists, err := s.Stops.Exists(ctx, name)
	if err != nil {
		return models.Stop{}, err
	}
	if exists {
		return models.Stop{}, domain.ConflictError{Resource: "stop", Msg: "name already exists"}
	}
	id, err := s.Stops.Insert(ctx, name)
	if err != nil {
		return models.Stop{}, err
	}
	return models.Stop{ID: id, Name: name}, nil
}

func (s TopologyService) RenameStop(ctx context.Context, id int64, name string) (models.Stop, error) {
	name = utils.NormalizeName(name)
	if name == "" {
		return models.Stop{}, domain.ValidationError{Field: "stop_name", Msg: "must not be empty"}
	}
	ok, err := s.Stops.ExistsID(ctx, id)
	if err != nil {
		return models.Stop{}, err
	}
	if !ok {
		return models.Stop{}, domain.NotFoundError{Resource: "stop"}
	}
	taken, err := s.Stops.Exists(ctx, name)
	if err != nil {
		return models.Stop{}, err
	}
	if taken {
		return models.Stop{}, domain.ConflictError{Resource: "stop", Msg: "name already exists"}
	}
	if err := s.Stops.Rename(ctx, id, name); err != nil {
		return models.Stop{}, err
	}
	return models.Stop{ID: id, Name: name}, nil
}

// DeleteStop refuses while any route variant still lists the stop.
func (s TopologyService) DeleteStop(ctx context.Context, id int64) error {
	ok, err := s.Stops.ExistsID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFoundError{Resource: "stop"}
	}
	used, err := s.Stops.Referenced(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return domain.ConflictError{Resource: "stop", Msg: "stop is part of a route variant"}
	}
	return s.Stops.Delete(ctx, id)
}

func (s TopologyService) ListRoutes(ctx context.Context) ([]models.Route, error) {
	return s.Routes.List(ctx)
}

func (s TopologyService) AddRoute(ctx context.Context, name string) (models.Route, error) {
	name = utils.NormalizeName(name)
	if name == "" {
		return models.Route{}, domain.ValidationError{Field: "route_name", Msg: "must not be empty"}
	}
	exists, err := s.Routes.ExistsByName(ctx, name)
	if err != nil {
		return models.Route{}, err
	}
	if exists {
		return models.Route{}, domain.ConflictError{Resource: "route", Msg: "name already exists"}
	}
	id, err := s.Routes.Insert(ctx, name)
	if err != nil {
		return models.Route{}, err
	}
	return models.Route{ID: id, Name: name}, nil
}

// DeleteRoute refuses while the route still has variants.
func (s TopologyService) DeleteRoute(ctx context.Context, id int64) error {
	ok, err := s.Routes.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFoundError{Resource: "route"}
	}
	hasVariants, err := s.Routes.HasVariants(ctx, id)
	if err != nil {
		return err
	}
	if hasVariants {
		return domain.ConflictError{Resource: "route", Msg: "route still has variants"}
	}
	return s.Routes.Delete(ctx, id)
}

func (s TopologyService) ListVariants(ctx context.Context, routeID int64) ([]models.RouteVariant, error) {
	ok, err := s.Routes.Exists(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFoundError{Resource: "route"}
	}
	variants, err := s.Routes.VariantsByRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	for i := range variants {
		stops, err := s.Routes.VariantStops(ctx, variants[i].ID)
		if err != nil {
			return nil, err
		}
		variants[i].Stops = stops
		variants[i].StopsReadable = readableStops(stops)
	}
	return variants, nil
}

func readableStops(stops []models.VariantStop) string {
	names := make([]string, 0, len(stops))
	for _, st := range stops {
		names = append(names, st.StopName)
	}
	return strings.Join(names, " -> ")
}

// variantLabel derives the stored variant_name from the ordered stop-id
// sequence; the sequence itself is the variant's identity.
func variantLabel(stopIDs []int64) string {
	parts := make([]string, 0, len(stopIDs))
	for _, id := range stopIDs {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, "_")
}

func (s TopologyService) validateStopSequence(ctx context.Context, stopIDs []int64) error {
	if len(stopIDs) < 2 {
		return domain.ValidationError{Field: "stops", Msg: "a variant needs at least two stops"}
	}
	seen := map[int64]bool{}
	for _, id := range stopIDs {
		if seen[id] {
			return domain.ValidationError{Field: "stops", Msg: fmt.Sprintf("stop %d appears more than once", id)}
		}
		seen[id] = true
		ok, err := s.Stops.ExistsID(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Resource: "stop"}
		}
	}
	return nil
}

func (s TopologyService) AddVariant(ctx context.Context, routeID int64, stopIDs []int64) (models.RouteVariant, error) {
	ok, err := s.Routes.Exists(ctx, routeID)
	if err != nil {
		return models.RouteVariant{}, err
	}
	if !ok {
		return models.RouteVariant{}, domain.NotFoundError{Resource: "route"}
	}
	if err := s.validateStopSequence(ctx, stopIDs); err != nil {
		return models.RouteVariant{}, err
	}
	name := variantLabel(stopIDs)
	dup, err := s.Routes.VariantNameExists(ctx, routeID, name, 0)
	if err != nil {
		return models.RouteVariant{}, err
	}
	if dup {
		return models.RouteVariant{}, domain.ConflictError{Resource: "variant", Msg: "this stop sequence already exists on the route"}
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return models.RouteVariant{}, err
	}
	defer tx.Rollback()

	variantID, err := s.Routes.InsertVariant(ctx, tx, routeID, name)
	if err != nil {
		return models.RouteVariant{}, err
	}
	for i, stopID := range stopIDs {
		if err := s.Routes.InsertVariantStop(ctx, tx, routeID, variantID, stopID, i+1); err != nil {
			return models.RouteVariant{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.RouteVariant{}, err
	}
	return models.RouteVariant{ID: variantID, RouteID: routeID, Name: name}, nil
}

// EditVariant replaces the stop sequence. It refuses while the variant
// carries bookings for today or a future date, because reordering stops
// would silently change what those tickets mean.
func (s TopologyService) EditVariant(ctx context.Context, routeID, variantID int64, stopIDs []int64) (models.RouteVariant, error) {
	belongs, err := s.Routes.VariantBelongs(ctx, variantID, routeID)
	if err != nil {
		return models.RouteVariant{}, err
	}
	if !belongs {
		return models.RouteVariant{}, domain.NotFoundError{Resource: "variant"}
	}
	if err := s.validateStopSequence(ctx, stopIDs); err != nil {
		return models.RouteVariant{}, err
	}
	name := variantLabel(stopIDs)
	dup, err := s.Routes.VariantNameExists(ctx, routeID, name, variantID)
	if err != nil {
		return models.RouteVariant{}, err
	}
	if dup {
		return models.RouteVariant{}, domain.ConflictError{Resource: "variant", Msg: "this stop sequence already exists on the route"}
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return models.RouteVariant{}, err
	}
	defer tx.Rollback()

	future, err := s.Bookings.FutureCountByVariant(ctx, tx, variantID)
	if err != nil {
		return models.RouteVariant{}, err
	}
	if future > 0 {
		return models.RouteVariant{}, domain.ConflictError{Resource: "variant", Msg: "variant has upcoming bookings"}
	}
	// Schedules reference the old stop sequence; drop them so bus admins
	// re-enter valid timings.
	if err := s.Buses.DeleteScheduleByVariant(ctx, tx, variantID); err != nil {
		return models.RouteVariant{}, err
	}
	if err := s.Routes.DeleteVariantStops(ctx, tx, variantID); err != nil {
		return models.RouteVariant{}, err
	}
	for i, stopID := range stopIDs {
		if err := s.Routes.InsertVariantStop(ctx, tx, routeID, variantID, stopID, i+1); err != nil {
			return models.RouteVariant{}, err
		}
	}
	if err := s.Routes.UpdateVariantName(ctx, tx, variantID, name); err != nil {
		return models.RouteVariant{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.RouteVariant{}, err
	}
	return models.RouteVariant{ID: variantID, RouteID: routeID, Name: name}, nil
}

// DeleteVariant removes the variant, its stop rows and its schedules,
// refusing while upcoming bookings exist.
func (s TopologyService) DeleteVariant(ctx context.Context, routeID, variantID int64) error {
	belongs, err := s.Routes.VariantBelongs(ctx, variantID, routeID)
	if err != nil {
		return err
	}
	if !belongs {
		return domain.NotFoundError{Resource: "variant"}
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	future, err := s.Bookings.FutureCountByVariant(ctx, tx, variantID)
	if err != nil {
		return err
	}
	if future > 0 {
		return domain.ConflictError{Resource: "variant", Msg: "variant has upcoming bookings"}
	}
	if err := s.Buses.DeleteScheduleByVariant(ctx, tx, variantID); err != nil {
		return err
	}
	if err := s.Routes.DeleteVariantStops(ctx, tx, variantID); err != nil {
		return err
	}
	if err := s.Routes.DeleteVariant(ctx, tx, variantID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s TopologyService) ListBuses(ctx context.Context, routeID int64) ([]models.BusDetail, error) {
	var buses []models.BusDetail
	var err error
	if routeID != 0 {
		buses, err = s.Buses.ListByRoute(ctx, routeID)
	} else {
		buses, err = s.Buses.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	for i := range buses {
		stops, err := s.Routes.VariantStops(ctx, buses[i].VariantID)
		if err != nil {
			return nil, err
		}
		buses[i].Stops = readableStops(stops)
	}
	return buses, nil
}

func (s TopologyService) GetBus(ctx context.Context, busID int64) (models.BusDetail, error) {
	bus, err := s.Buses.Get(ctx, busID)
	if err != nil {
		return models.BusDetail{}, err
	}
	detail := models.BusDetail{Bus: bus}
	stops, err := s.Routes.VariantStops(ctx, bus.VariantID)
	if err != nil {
		return models.BusDetail{}, err
	}
	detail.Stops = readableStops(stops)
	schedule, err := s.Buses.Schedule(ctx, busID)
	if err != nil {
		return models.BusDetail{}, err
	}
	detail.Schedule = schedule
	return detail, nil
}

// AddBus creates a bus bound to one variant of one route together with
// its per-stop schedule. The schedule must cover the variant's stops in
// order with non-decreasing times.
func (s TopologyService) AddBus(ctx context.Context, bus models.Bus, schedule []models.ScheduleEntry) (models.BusDetail, error) {
	bus.Name = utils.TrimOrEmpty(bus.Name)
	if bus.Name == "" {
		return models.BusDetail{}, domain.ValidationError{Field: "bus_name", Msg: "must not be empty"}
	}
	if bus.TotalSeats <= 0 {
		return models.BusDetail{}, domain.ValidationError{Field: "total_seats", Msg: "must be positive"}
	}
	belongs, err := s.Routes.VariantBelongs(ctx, bus.VariantID, bus.RouteID)
	if err != nil {
		return models.BusDetail{}, err
	}
	if !belongs {
		return models.BusDetail{}, domain.NotFoundError{Resource: "variant"}
	}
	stops, err := s.Routes.VariantStops(ctx, bus.VariantID)
	if err != nil {
		return models.BusDetail{}, err
	}
	if err := validateSchedule(stops, schedule); err != nil {
		return models.BusDetail{}, err
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return models.BusDetail{}, err
	}
	defer tx.Rollback()

	busID, err := s.Buses.Insert(ctx, tx, bus)
	if err != nil {
		return models.BusDetail{}, err
	}
	for _, e := range schedule {
		if err := s.Buses.InsertScheduleEntry(ctx, tx, busID, bus.RouteID, bus.VariantID, e.StopID, e.ArrivalTime, e.DepartureTime); err != nil {
			return models.BusDetail{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.BusDetail{}, err
	}
	return s.GetBus(ctx, busID)
}

// validateSchedule checks the schedule covers exactly the variant's stops
// in order, each arrival is not after its departure, and departures never
// run backwards along the sequence.
func validateSchedule(stops []models.VariantStop, schedule []models.ScheduleEntry) error {
	if len(schedule) != len(stops) {
		return domain.ValidationError{Field: "schedule", Msg: "schedule must cover every stop of the variant"}
	}
	prevDeparture := ""
	for i, e := range schedule {
		if e.StopID != stops[i].StopID {
			return domain.ValidationError{Field: "schedule", Msg: "schedule stops must follow the variant's stop order"}
		}
		if !validClock(e.ArrivalTime) || !validClock(e.DepartureTime) {
			return domain.ValidationError{Field: "schedule", Msg: "times must be HH:MM or HH:MM:SS"}
		}
		if e.DepartureTime < e.ArrivalTime {
			return domain.ValidationError{Field: "schedule", Msg: fmt.Sprintf("departure before arrival at stop %d", e.StopID)}
		}
		if prevDeparture != "" && e.ArrivalTime < prevDeparture {
			return domain.ValidationError{Field: "schedule", Msg: fmt.Sprintf("arrival at stop %d before previous departure", e.StopID)}
		}
		prevDeparture = e.DepartureTime
	}
	return nil
}

// validClock accepts HH:MM and HH:MM:SS, which compare correctly as
// strings within one day.
func validClock(s string) bool {
	if len(s) != 5 && len(s) != 8 {
		return false
	}
	for i, c := range s {
		if i == 2 || i == 5 {
			if c != ':' {
				return false
			}
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return s[:2] < "24" && s[3:5] < "60"
}

// SetBusSchedule records the bus's per-stop timings for the first time.
// A bus that already has a schedule must go through ReplaceBusSchedule.
func (s TopologyService) SetBusSchedule(ctx context.Context, busID int64, schedule []models.ScheduleEntry) (models.BusDetail, error) {
	bus, err := s.Buses.Get(ctx, busID)
	if err != nil {
		return models.BusDetail{}, err
	}
	has, err := s.Buses.HasSchedule(ctx, busID)
	if err != nil {
		return models.BusDetail{}, err
	}
	if has {
		return models.BusDetail{}, domain.ConflictError{Resource: "schedule", Msg: "bus already has a schedule"}
	}
	stops, err := s.Routes.VariantStops(ctx, bus.VariantID)
	if err != nil {
		return models.BusDetail{}, err
	}
	if err := validateSchedule(stops, schedule); err != nil {
		return models.BusDetail{}, err
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return models.BusDetail{}, err
	}
	defer tx.Rollback()

	for _, e := range schedule {
		if err := s.Buses.InsertScheduleEntry(ctx, tx, busID, bus.RouteID, bus.VariantID, e.StopID, e.ArrivalTime, e.DepartureTime); err != nil {
			return models.BusDetail{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.BusDetail{}, err
	}
	return s.GetBus(ctx, busID)
}

// ReplaceBusSchedule swaps the timings wholesale. It refuses while the
// bus carries bookings for today or later, because passengers hold
// tickets against the published times.
func (s TopologyService) ReplaceBusSchedule(ctx context.Context, busID int64, schedule []models.ScheduleEntry) (models.BusDetail, error) {
	bus, err := s.Buses.Get(ctx, busID)
	if err != nil {
		return models.BusDetail{}, err
	}
	stops, err := s.Routes.VariantStops(ctx, bus.VariantID)
	if err != nil {
		return models.BusDetail{}, err
	}
	if err := validateSchedule(stops, schedule); err != nil {
		return models.BusDetail{}, err
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return models.BusDetail{}, err
	}
	defer tx.Rollback()

	future, err := s.Bookings.FutureCountByBus(ctx, tx, busID)
	if err != nil {
		return models.BusDetail{}, err
	}
	if future > 0 {
		return models.BusDetail{}, domain.ConflictError{Resource: "schedule", Msg: "bus has upcoming bookings"}
	}
	if err := s.Buses.DeleteSchedule(ctx, tx, busID); err != nil {
		return models.BusDetail{}, err
	}
	for _, e := range schedule {
		if err := s.Buses.InsertScheduleEntry(ctx, tx, busID, bus.RouteID, bus.VariantID, e.StopID, e.ArrivalTime, e.DepartureTime); err != nil {
			return models.BusDetail{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.BusDetail{}, err
	}
	return s.GetBus(ctx, busID)
}

// DeleteBusSchedule drops the timings, under the same booking guard.
func (s TopologyService) DeleteBusSchedule(ctx context.Context, busID int64) error {
	if _, err := s.Buses.Get(ctx, busID); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	future, err := s.Bookings.FutureCountByBus(ctx, tx, busID)
	if err != nil {
		return err
	}
	if future > 0 {
		return domain.ConflictError{Resource: "schedule", Msg: "bus has upcoming bookings"}
	}
	if err := s.Buses.DeleteSchedule(ctx, tx, busID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteBus refuses while the bus carries bookings for today or later.
func (s TopologyService) DeleteBus(ctx context.Context, busID int64) error {
	if _, err := s.Buses.Get(ctx, busID); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	future, err := s.Bookings.FutureCountByBus(ctx, tx, busID)
	if err != nil {
		return err
	}
	if future > 0 {
		return domain.ConflictError{Resource: "bus", Msg: "bus has upcoming bookings"}
	}
	if err := s.Buses.DeleteSchedule(ctx, tx, busID); err != nil {
		return err
	}
	if err := s.Buses.Delete(ctx, tx, busID); err != nil {
		return err
	}
	return tx.Commit()
}
