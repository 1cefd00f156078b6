package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/connect-four/pkg/auth"
	"github.com/iamasit07/connect-four/pkg/httputil"
)

// TableIDKey is the gin context key holding the authorized table
const TableIDKey = "table_id"

// TableAuth validates the table token against the :id route parameter
func TableAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := httputil.GetTokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		tableID := c.Param("id")
		if err := tokens.Authorize(tokenString, tableID); err != nil {
			log.Debug().Err(err).Str("component", "auth").Str("table_id", tableID).Msg("Rejected table token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid table token"})
			return
		}

		c.Set(TableIDKey, tableID)
		c.Next()
	}
}
