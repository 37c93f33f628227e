package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sevaportal/internal/services"
)

// TopologyHandler exposes the admin network management: stops, routes and
// route variants.
type TopologyHandler struct {
	Topology services.TopologyService
}

func NewTopologyHandler(topology services.TopologyService) TopologyHandler {
	return TopologyHandler{Topology: topology}
}

// GET /api/stops
func (h TopologyHandler) ListStops(c *gin.Context) {
	stops, err := h.Topology.ListStops(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stops": stops})
}

type stopRequest struct {
	StopName string `json:"stop_name"`
}

// POST /api/admin/stops
func (h TopologyHandler) AddStop(c *gin.Context) {
	var in stopRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	stop, err := h.Topology.AddStop(c.Request.Context(), in.StopName)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "stop added", "stop": stop})
}

// PUT /api/admin/stops/:id
func (h TopologyHandler) RenameStop(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var in stopRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	stop, err := h.Topology.RenameStop(c.Request.Context(), id, in.StopName)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stop renamed", "stop": stop})
}

// DELETE /api/admin/stops/:id
func (h TopologyHandler) DeleteStop(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	if err := h.Topology.DeleteStop(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stop deleted"})
}

// GET /api/routes
func (h TopologyHandler) ListRoutes(c *gin.Context) {
	routes, err := h.Topology.ListRoutes(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

type routeRequest struct {
	RouteName string `json:"route_name"`
}

// POST /api/admin/routes
func (h TopologyHandler) AddRoute(c *gin.Context) {
	var in routeRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	route, err := h.Topology.AddRoute(c.Request.Context(), in.RouteName)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "route added", "route": route})
}

// DELETE /api/admin/routes/:id
func (h TopologyHandler) DeleteRoute(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	if err := h.Topology.DeleteRoute(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "route deleted"})
}

// GET /api/routes/:id/variants
func (h TopologyHandler) ListVariants(c *gin.Context) {
	routeID, ok := PathID(c, "id")
	if !ok {
		return
	}
	variants, err := h.Topology.ListVariants(c.Request.Context(), routeID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variants": variants})
}

type variantRequest struct {
	Stops []int64 `json:"stops"`
}

// POST /api/admin/routes/:id/variants
func (h TopologyHandler) AddVariant(c *gin.Context) {
	routeID, ok := PathID(c, "id")
	if !ok {
		return
	}
	var in variantRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	variant, err := h.Topology.AddVariant(c.Request.Context(), routeID, in.Stops)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "variant added", "variant": variant})
}

// PUT /api/admin/routes/:id/variants/:variantId
func (h TopologyHandler) EditVariant(c *gin.Context) {
	routeID, ok := PathID(c, "id")
	if !ok {
		return
	}
	variantID, ok := PathID(c, "variantId")
	if !ok {
		return
	}
	var in variantRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	variant, err := h.Topology.EditVariant(c.Request.Context(), routeID, variantID, in.Stops)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "variant updated", "variant": variant})
}

// DELETE /api/admin/routes/:id/variants/:variantId
func (h TopologyHandler) DeleteVariant(c *gin.Context) {
	routeID, ok := PathID(c, "id")
	if !ok {
		return
	}
	variantID, ok := PathID(c, "variantId")
	if !ok {
		return
	}
	if err := h.Topology.DeleteVariant(c.Request.Context(), routeID, variantID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "variant deleted"})
}
