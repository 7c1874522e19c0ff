package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware attaches the caller's session when a valid token is sent as
// a bearer header or a ?token= query parameter. Requests without one pass
// through anonymously.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
		if token == "" {
			c.Next()
			return
		}

		session, err := s.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}
		c.Set("session_id", session.ID)
		c.Set("wallet", session.Wallet)
		c.Set("role", string(session.Role))
		c.Next()
	}
}
