package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/smallbiznis/ledgerly/internal/ledger/domain"
)

func (s *Server) CreateLedger(c *gin.Context) {
	var req ledgerdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.TrimSpace(req.Code)

	resp, err := s.ledgerSvc.Create(c.Request.Context(), companyIDFrom(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListLedgers(c *gin.Context) {
	resp, err := s.ledgerSvc.List(c.Request.Context(), companyIDFrom(c), strings.TrimSpace(c.Query("type")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isLedgerValidationError(err error) bool {
	switch err {
	case ledgerdomain.ErrInvalidCompany,
		ledgerdomain.ErrInvalidName,
		ledgerdomain.ErrInvalidType,
		ledgerdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
