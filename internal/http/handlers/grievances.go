package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sevaportal/internal/http/middleware"
	"sevaportal/internal/services"
)

// GrievanceHandler covers citizen grievances and the admin resolution
// queue.
type GrievanceHandler struct {
	Grievances services.GrievanceService
}

func NewGrievanceHandler(grievances services.GrievanceService) GrievanceHandler {
	return GrievanceHandler{Grievances: grievances}
}

type createGrievanceRequest struct {
	ServiceID   int64  `json:"service_id"`
	Description string `json:"description"`
}

// POST /api/grievances
func (h GrievanceHandler) Create(c *gin.Context) {
	citizenID, _ := middleware.GetCitizenID(c)
	var in createGrievanceRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	g, err := h.Grievances.Create(c.Request.Context(), citizenID, in.ServiceID, in.Description)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "grievance filed", "grievance": g})
}

// GET /api/grievances
func (h GrievanceHandler) ListMine(c *gin.Context) {
	citizenID, _ := middleware.GetCitizenID(c)
	list, err := h.Grievances.ListMine(c.Request.Context(), citizenID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"grievances": list})
}

// GET /api/admin/grievances?status=
func (h GrievanceHandler) AdminList(c *gin.Context) {
	admin, _ := middleware.GetAdmin(c)
	list, err := h.Grievances.AdminList(c.Request.Context(), admin, c.Query("status"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"grievances": list})
}

type resolveGrievanceRequest struct {
	ResolutionRemark string `json:"resolution_remark"`
}

// PUT /api/admin/grievances/:id/resolve
func (h GrievanceHandler) Resolve(c *gin.Context) {
	admin, _ := middleware.GetAdmin(c)
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var in resolveGrievanceRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	g, err := h.Grievances.Resolve(c.Request.Context(), admin, id, in.ResolutionRemark)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "grievance resolved", "grievance": g})
}
