package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	auditdomain "github.com/ayz7879/fg-plant/internal/audit/domain"
	customerdomain "github.com/ayz7879/fg-plant/internal/customer/domain"
	obscontext "github.com/ayz7879/fg-plant/internal/observability/context"
	"github.com/ayz7879/fg-plant/internal/observability/logger"
	"github.com/ayz7879/fg-plant/pkg/db/pagination"
)

type customerRequest struct {
	Name                  string          `json:"name"`
	Address               string          `json:"address"`
	Phone                 string          `json:"phone"`
	AdvancePay            decimal.Decimal `json:"advance_pay"`
	InitialDepositJar     int             `json:"initial_deposit_jar"`
	InitialDepositCapsule int             `json:"initial_deposit_capsule"`
	PricePerJar           decimal.Decimal `json:"price_per_jar"`
	PricePerCapsule       decimal.Decimal `json:"price_per_capsule"`
	Type                  string          `json:"type"`
	Active                *bool           `json:"active"`
	BillDay               int             `json:"bill_day"`
}

func (r customerRequest) toDomain() customerdomain.CreateCustomerRequest {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return customerdomain.CreateCustomerRequest{
		Name:                  strings.TrimSpace(r.Name),
		Address:               strings.TrimSpace(r.Address),
		Phone:                 strings.TrimSpace(r.Phone),
		AdvancePay:            r.AdvancePay,
		InitialDepositJar:     r.InitialDepositJar,
		InitialDepositCapsule: r.InitialDepositCapsule,
		PricePerJar:           r.PricePerJar,
		PricePerCapsule:       r.PricePerCapsule,
		Type:                  customerdomain.CustomerType(strings.ToUpper(strings.TrimSpace(r.Type))),
		Active:                active,
		BillDay:               r.BillDay,
	}
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customer.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.writeAudit(c, auditdomain.ActionCustomerCreated, resp.ID.String(), map[string]any{
		"name": resp.Name,
	})
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomer(c *gin.Context) {
	resp, err := s.customer.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCustomers(c *gin.Context) {
	var query struct {
		pagination.KeysetQuery
		Type string `form:"type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customer.List(c.Request.Context(), customerdomain.ListCustomerRequest{
		KeysetQuery: query.KeysetQuery,
		Type:        customerdomain.CustomerType(strings.ToUpper(strings.TrimSpace(query.Type))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SearchCustomers(c *gin.Context) {
	var query struct {
		pagination.KeysetQuery
		Term string `form:"q"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(query.Term) == "" {
		AbortWithError(c, newValidationError("q", "required", "search term is required"))
		return
	}

	resp, err := s.customer.Search(c.Request.Context(), customerdomain.SearchCustomerRequest{
		KeysetQuery: query.KeysetQuery,
		Term:        strings.TrimSpace(query.Term),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CustomerCounts(c *gin.Context) {
	resp, err := s.customer.Counts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customer.Update(c.Request.Context(), c.Param("id"), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.writeAudit(c, auditdomain.ActionCustomerUpdated, resp.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	id := c.Param("id")
	if err := s.customer.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.writeAudit(c, auditdomain.ActionCustomerDeleted, id, nil)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) writeAudit(c *gin.Context, action, targetID string, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	ip := c.ClientIP()
	agent := c.Request.UserAgent()
	var actorID *string
	if actor := obscontext.ActorFromContext(c.Request.Context()); actor != "" {
		actorID = &actor
	}
	err := s.audit.Write(c.Request.Context(), auditdomain.Record{
		ActorType:  auditdomain.ActorTypeUser,
		ActorID:    actorID,
		Action:     action,
		TargetType: "customer",
		TargetID:   targetID,
		Metadata:   metadata,
		IPAddress:  &ip,
		UserAgent:  &agent,
	})
	if err != nil {
		s.log.Warn("audit write failed",
			zap.String("action", action),
			zap.Any("metadata", logger.MaskJSON(metadata)),
			zap.Error(err))
	}
}
