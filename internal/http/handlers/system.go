package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/config"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "seat exchange backend running"})
}

func DBCheck(c *gin.Context) {
	if err := config.EnsureDB(currentEnv()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database unreachable: " + err.Error()})
		return
	}
	var count int
	if err := config.DB.QueryRow("SELECT COUNT(*) FROM tickets").Scan(&count); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "tickets_in_db": count})
}
