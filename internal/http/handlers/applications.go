package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sevaportal/internal/domain"
	"sevaportal/internal/http/middleware"
	"sevaportal/internal/repositories"
	"sevaportal/internal/services"
)

// ApplicationHandler covers the citizen side of service applications:
// catalog browsing, applying, documents and fee payment.
type ApplicationHandler struct {
	Apps services.ApplicationService
}

func NewApplicationHandler(apps services.ApplicationService) ApplicationHandler {
	return ApplicationHandler{Apps: apps}
}

// GET /api/departments
func (h ApplicationHandler) Departments(c *gin.Context) {
	departments, err := h.Apps.Departments(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": departments})
}

// GET /api/services?dept_id=
func (h ApplicationHandler) Services(c *gin.Context) {
	deptID, ok := QueryInt64(c, "dept_id")
	if !ok {
		return
	}
	list, err := h.Apps.Services(c.Request.Context(), deptID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": list})
}

type applyRequest struct {
	ServiceID int64 `json:"service_id"`
}

// POST /api/applications
func (h ApplicationHandler) Apply(c *gin.Context) {
	citizenID, _ := middleware.GetCitizenID(c)
	var in applyRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	app, err := h.Apps.Apply(c.Request.Context(), citizenID, in.ServiceID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "application submitted", "application": app})
}

// GET /api/applications
func (h ApplicationHandler) ListMine(c *gin.Context) {
	citizenID, _ := middleware.GetCitizenID(c)
	apps, err := h.Apps.ListMine(c.Request.Context(), citizenID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

type uploadDocumentRequest struct {
	DocType string `json:"doc_type"`
	DocPath string `json:"doc_path"`
}

// POST /api/applications/:id/documents
func (h ApplicationHandler) UploadDocument(c *gin.Context) {
	citizenID, _ := middleware.GetCitizenID(c)
	appID, ok := PathID(c, "id")
	if !ok {
		return
	}
	var in uploadDocumentRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	doc, err := h.Apps.UploadDocument(c.Request.Context(), citizenID, appID, in.DocType, in.DocPath)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "document uploaded", "document": doc})
}

type payRequest struct {
	PaymentMode string `json:"payment_mode"`
}

// POST /api/applications/:id/pay
func (h ApplicationHandler) Pay(c *gin.Context) {
	citizenID, _ := middleware.GetCitizenID(c)
	appID, ok := PathID(c, "id")
	if !ok {
		return
	}
	var in payRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	payment, err := h.Apps.Pay(c.Request.Context(), citizenID, appID, in.PaymentMode)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "payment recorded", "payment": payment})
}

// AdminApplicationHandler is the department/super admin side: the review
// queue, verification, status moves and rollups.
type AdminApplicationHandler struct {
	Apps     services.ApplicationService
	Bookings services.BookingService
}

func NewAdminApplicationHandler(apps services.ApplicationService, bookings services.BookingService) AdminApplicationHandler {
	return AdminApplicationHandler{Apps: apps, Bookings: bookings}
}

// GET /api/admin/applications?status=&dept_id=&page=&limit=
func (h AdminApplicationHandler) List(c *gin.Context) {
	admin, _ := middleware.GetAdmin(c)
	deptID, ok := QueryInt64(c, "dept_id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	apps, pagination, err := h.Apps.AdminList(c.Request.Context(), admin, repositories.AdminFilter{
		DeptID: deptID,
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps, "pagination": pagination})
}

// GET /api/admin/applications/:id
func (h AdminApplicationHandler) Detail(c *gin.Context) {
	admin, _ := middleware.GetAdmin(c)
	appID, ok := PathID(c, "id")
	if !ok {
		return
	}
	app, err := h.Apps.Detail(c.Request.Context(), admin, appID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Remark string `json:"remark"`
}

// PUT /api/admin/applications/:id/status
func (h AdminApplicationHandler) UpdateStatus(c *gin.Context) {
	admin, _ := middleware.GetAdmin(c)
	appID, ok := PathID(c, "id")
	if !ok {
		return
	}
	var in updateStatusRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	app, err := h.Apps.UpdateStatus(c.Request.Context(), admin, appID, domain.ApplicationStatus(in.Status), in.Remark)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated", "application": app})
}

// GET /api/admin/documents/pending
func (h AdminApplicationHandler) PendingDocuments(c *gin.Context) {
	admin, _ := middleware.GetAdmin(c)
	docs, err := h.Apps.PendingDocuments(c.Request.Context(), admin)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

type verifyDocumentRequest struct {
	Status string `json:"verification_status"`
}

// PUT /api/admin/documents/:id/verify
func (h AdminApplicationHandler) VerifyDocument(c *gin.Context) {
	admin, _ := middleware.GetAdmin(c)
	docID, ok := PathID(c, "id")
	if !ok {
		return
	}
	var in verifyDocumentRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	doc, err := h.Apps.VerifyDocument(c.Request.Context(), admin, docID, domain.DocumentStatus(in.Status))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "document reviewed", "document": doc})
}

// GET /api/admin/dashboard
func (h AdminApplicationHandler) Dashboard(c *gin.Context) {
	admin, _ := middleware.GetAdmin(c)
	stats, err := h.Apps.Dashboard(c.Request.Context(), admin)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /api/admin/payments?days=
func (h AdminApplicationHandler) PayHistory(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	payments, total, err := h.Bookings.PayHistory(c.Request.Context(), days)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "total_earning": total})
}
