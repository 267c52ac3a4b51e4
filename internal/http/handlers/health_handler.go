// README: Liveness endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Check never touches a dependency.
func Check(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
