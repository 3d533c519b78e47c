package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	companydomain "github.com/smallbiznis/ledgerly/internal/company/domain"
)

type companyResponse struct {
	companydomain.Company
	Settings companydomain.Settings `json:"settings"`
}

func (s *Server) CreateCompany(c *gin.Context) {
	var req companydomain.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	resp, err := s.companySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": companyResponse{Company: resp, Settings: resp.Settings()}})
}

func (s *Server) GetCompany(c *gin.Context) {
	resp, err := s.companySvc.Get(c.Request.Context(), companyIDFrom(c).String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": companyResponse{Company: resp, Settings: resp.Settings()}})
}

func (s *Server) UpdateCompany(c *gin.Context) {
	var req companydomain.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.Update(c.Request.Context(), companyIDFrom(c).String(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": companyResponse{Company: resp, Settings: resp.Settings()}})
}

func isCompanyValidationError(err error) bool {
	switch err {
	case companydomain.ErrInvalidID,
		companydomain.ErrInvalidName,
		companydomain.ErrInvalidGSTRate:
		return true
	default:
		return false
	}
}
