package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/ledgerly/internal/audit/domain"
)

func (s *Server) ListAuditLogs(c *gin.Context) {
	var req auditdomain.ListAuditLogRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), companyIDFrom(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func isAuditValidationError(err error) bool {
	switch err {
	case auditdomain.ErrInvalidCompany,
		auditdomain.ErrInvalidPageToken,
		auditdomain.ErrInvalidTimeRange:
		return true
	default:
		return false
	}
}
