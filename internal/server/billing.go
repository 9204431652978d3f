package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	billingdomain "github.com/ayz7879/fg-plant/internal/billing/domain"
	"github.com/ayz7879/fg-plant/internal/billing/render"
	entrydomain "github.com/ayz7879/fg-plant/internal/entry/domain"
	"github.com/ayz7879/fg-plant/pkg/db/pagination"
)

func (s *Server) ListDue(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Search string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billing.ListDue(c.Request.Context(), billingdomain.ListDueRequest{
		Pagination: query.Pagination,
		Search:     query.Search,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDueToday(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Search string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billing.ListDueToday(c.Request.Context(), billingdomain.ListDueTodayRequest{
		Pagination: query.Pagination,
		Search:     query.Search,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ComputeDue(c *gin.Context) {
	var query struct {
		From string `form:"from"`
		To   string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	from, err := parseOptionalDate(query.From)
	if err != nil {
		AbortWithError(c, newValidationError("from", "format", "expected YYYY-MM-DD"))
		return
	}
	to, err := parseOptionalDate(query.To)
	if err != nil {
		AbortWithError(c, newValidationError("to", "format", "expected YYYY-MM-DD"))
		return
	}

	resp, err := s.billing.ComputeDue(c.Request.Context(), c.Param("id"), billingdomain.DueWindow{
		From: from,
		To:   to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkSettled(c *gin.Context) {
	resp, err := s.billing.MarkSettled(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// RenderBill produces a printable HTML bill for one customer from the live
// ledger balance.
func (s *Server) RenderBill(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	customer, err := s.customer.GetByID(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	breakdown, err := s.billing.ComputeDue(ctx, id, billingdomain.DueWindow{})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	summary, err := s.entry.Summary(ctx, entrydomain.SummaryRequest{CustomerID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	lines := []render.LineView{
		{
			Description: "Water jars delivered",
			Quantity:    breakdown.TotalJarGiven,
			Rate:        breakdown.PricePerJar.String(),
			Amount:      breakdown.JarCharges.String(),
		},
		{
			Description: "Capsules delivered",
			Quantity:    breakdown.TotalCapsuleGiven,
			Rate:        breakdown.PricePerCapsule.String(),
			Amount:      breakdown.CapsuleCharges.String(),
		},
		{
			Description: "Payments received",
			Quantity:    0,
			Rate:        "",
			Amount:      "-" + breakdown.TotalPaid.String(),
		},
	}

	html, err := s.renderer.RenderHTML(render.BillInput{
		Business: render.BusinessView{Name: s.cfg.ServiceName},
		Customer: render.CustomerView{
			Name:    customer.Name,
			Address: customer.Address,
			Phone:   customer.Phone,
		},
		Bill: render.BillView{
			Date:           time.Now().UTC(),
			BillDay:        customer.BillDay,
			DueAmount:      breakdown.DueAmount.String(),
			PendingJar:     summary.PendingJar,
			PendingCapsule: summary.PendingCapsule,
		},
		Lines: lines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// NormalizeCycles triggers a normalization pass on demand; the scheduler runs
// the same pass in the background.
func (s *Server) NormalizeCycles(c *gin.Context) {
	resp, err := s.billing.NormalizeCycles(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
