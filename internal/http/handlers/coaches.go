package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/domain/models"
	"backend/internal/railways"
	"backend/internal/utils"
)

// GetCoachLayout returns the berth map of one coach class, used by the
// seat picker and the bay visualizer.
func GetCoachLayout(c *gin.Context) {
	class := models.ClassType(utils.NormalizeCode(c.Param("class")))
	layout, err := railways.Layout(class)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"layout": layout})
}

// GetStations lists the known station codes.
func GetStations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stations": railways.Stations()})
}
