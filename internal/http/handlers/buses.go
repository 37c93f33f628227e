package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sevaportal/internal/domain/models"
	"sevaportal/internal/services"
)

// BusHandler exposes bus administration and the public search and
// availability endpoints.
type BusHandler struct {
	Topology services.TopologyService
	Bookings services.BookingService
}

func NewBusHandler(topology services.TopologyService, bookings services.BookingService) BusHandler {
	return BusHandler{Topology: topology, Bookings: bookings}
}

// GET /api/buses?route_id=
func (h BusHandler) List(c *gin.Context) {
	routeID, ok := QueryInt64(c, "route_id")
	if !ok {
		return
	}
	buses, err := h.Topology.ListBuses(c.Request.Context(), routeID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buses": buses})
}

// GET /api/buses/:id
func (h BusHandler) Get(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	bus, err := h.Topology.GetBus(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bus)
}

type addBusRequest struct {
	BusName    string                 `json:"bus_name"`
	TotalSeats int                    `json:"total_seats"`
	RouteID    int64                  `json:"route_id"`
	VariantID  int64                  `json:"route_variant_id"`
	Schedule   []models.ScheduleEntry `json:"schedule"`
}

// POST /api/admin/buses
func (h BusHandler) Add(c *gin.Context) {
	var in addBusRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	bus, err := h.Topology.AddBus(c.Request.Context(), models.Bus{
		Name:       in.BusName,
		TotalSeats: in.TotalSeats,
		RouteID:    in.RouteID,
		VariantID:  in.VariantID,
	}, in.Schedule)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "bus added", "bus": bus})
}

// DELETE /api/admin/buses/:id
func (h BusHandler) Delete(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	if err := h.Topology.DeleteBus(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bus deleted"})
}

type scheduleRequest struct {
	Schedule []models.ScheduleEntry `json:"schedule"`
}

// POST /api/admin/buses/:id/schedule
func (h BusHandler) SetSchedule(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var in scheduleRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	bus, err := h.Topology.SetBusSchedule(c.Request.Context(), id, in.Schedule)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "schedule added", "bus": bus})
}

// PUT /api/admin/buses/:id/schedule
func (h BusHandler) ReplaceSchedule(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var in scheduleRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	bus, err := h.Topology.ReplaceBusSchedule(c.Request.Context(), id, in.Schedule)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "schedule updated", "bus": bus})
}

// DELETE /api/admin/buses/:id/schedule
func (h BusHandler) DeleteSchedule(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	if err := h.Topology.DeleteBusSchedule(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "schedule deleted"})
}

// GET /api/buses/search?source=&destination=
func (h BusHandler) Search(c *gin.Context) {
	options, err := h.Bookings.SearchBuses(c.Request.Context(), c.Query("source"), c.Query("destination"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if len(options) == 0 {
		RespondError(c, http.StatusBadRequest, "no_buses_found", "no buses serve this segment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"buses": options})
}

// GET /api/buses/:id/booked-seats?travel_date=&src_stop_id=&dst_stop_id=
func (h BusHandler) BookedSeats(c *gin.Context) {
	busID, ok := PathID(c, "id")
	if !ok {
		return
	}
	srcID, ok := QueryInt64(c, "src_stop_id")
	if !ok {
		return
	}
	dstID, ok := QueryInt64(c, "dst_stop_id")
	if !ok {
		return
	}
	if srcID == 0 || dstID == 0 {
		RespondError(c, http.StatusBadRequest, "validation_error", "src_stop_id and dst_stop_id are required")
		return
	}
	seats, err := h.Bookings.BookedSeats(c.Request.Context(), busID, c.Query("travel_date"), srcID, dstID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booked_seats": seats})
}
