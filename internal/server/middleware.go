package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const contextCompanyIDKey = "company_id"

// CompanyRequired parses the company path segment once for every nested route.
func (s *Server) CompanyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := snowflake.ParseString(strings.TrimSpace(c.Param("company_id")))
		if err != nil || id == 0 {
			AbortWithError(c, newValidationError("company_id", "invalid_company_id", "invalid company id"))
			return
		}
		c.Set(contextCompanyIDKey, id)
		c.Next()
	}
}

func companyIDFrom(c *gin.Context) snowflake.ID {
	if v, ok := c.Get(contextCompanyIDKey); ok {
		if id, ok := v.(snowflake.ID); ok {
			return id
		}
	}
	return 0
}
