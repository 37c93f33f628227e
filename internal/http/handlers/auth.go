package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
	"sevaportal/internal/http/middleware"
	"sevaportal/internal/services"
)

func adminRole(s string) domain.AdminRole {
	return domain.AdminRole(strings.ToUpper(strings.TrimSpace(s)))
}

// AuthHandler covers citizen and admin registration, login and profiles.
type AuthHandler struct {
	Auth services.AuthService
}

func NewAuthHandler(auth services.AuthService) AuthHandler {
	return AuthHandler{Auth: auth}
}

// POST /api/auth/register
func (h AuthHandler) Register(c *gin.Context) {
	var in models.RegisterInput
	if !BindJSONOrError(c, &in) {
		return
	}
	citizen, err := h.Auth.RegisterCitizen(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registration successful", "citizen": citizen})
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h AuthHandler) Login(c *gin.Context) {
	var in loginRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	token, citizen, err := h.Auth.LoginCitizen(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "citizen": citizen})
}

// POST /api/auth/admin/login
func (h AuthHandler) AdminLogin(c *gin.Context) {
	var in loginRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	token, admin, err := h.Auth.LoginAdmin(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "admin": admin})
}

// GET /api/profile
func (h AuthHandler) Profile(c *gin.Context) {
	citizenID, _ := middleware.GetCitizenID(c)
	citizen, err := h.Auth.CitizenProfile(c.Request.Context(), citizenID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, citizen)
}

// GET /api/admin/profile
func (h AuthHandler) AdminProfile(c *gin.Context) {
	admin, _ := middleware.GetAdmin(c)
	profile, err := h.Auth.AdminProfile(c.Request.Context(), admin.AdminID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type createAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	DeptID   int64  `json:"dept_id"`
}

// POST /api/admin/admins
func (h AuthHandler) CreateAdmin(c *gin.Context) {
	admin, _ := middleware.GetAdmin(c)
	var in createAdminRequest
	if !BindJSONOrError(c, &in) {
		return
	}
	created, err := h.Auth.CreateAdmin(c.Request.Context(), admin, in.Username, in.Password, in.FullName,
		adminRole(in.Role), in.DeptID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "admin created", "admin": created})
}

// GET /api/admin/admins
func (h AuthHandler) ListAdmins(c *gin.Context) {
	admin, _ := middleware.GetAdmin(c)
	admins, err := h.Auth.ListAdmins(c.Request.Context(), admin)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admins": admins})
}
