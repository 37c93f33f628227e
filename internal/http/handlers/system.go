package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves liveness and database checks.
type SystemHandler struct {
	DB *sql.DB
}

func NewSystemHandler(db *sql.DB) SystemHandler {
	return SystemHandler{DB: db}
}

func (h SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h SystemHandler) DBCheck(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database is not connected"})
		return
	}
	var count int
	err := h.DB.QueryRowContext(c.Request.Context(), "SELECT COUNT(*) FROM bus_stops").Scan(&count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "stops_in_db": count})
}
