package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	entrydomain "github.com/ayz7879/fg-plant/internal/entry/domain"
	"github.com/ayz7879/fg-plant/pkg/db/pagination"
)

type entryRequest struct {
	CustomerID   string          `json:"customer_id"`
	JarGiven     int             `json:"jar_given"`
	JarTaken     int             `json:"jar_taken"`
	CapsuleGiven int             `json:"capsule_given"`
	CapsuleTaken int             `json:"capsule_taken"`
	CustomerPay  decimal.Decimal `json:"customer_pay"`
	EntryDate    string          `json:"entry_date"`
}

func (s *Server) CreateEntry(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	entryDate, err := parseOptionalDate(req.EntryDate)
	if err != nil {
		AbortWithError(c, newValidationError("entry_date", "invalid_entry_date", "expected YYYY-MM-DD"))
		return
	}

	resp, err := s.entry.Create(c.Request.Context(), entrydomain.CreateEntryRequest{
		CustomerID:   req.CustomerID,
		JarGiven:     req.JarGiven,
		JarTaken:     req.JarTaken,
		CapsuleGiven: req.CapsuleGiven,
		CapsuleTaken: req.CapsuleTaken,
		CustomerPay:  req.CustomerPay,
		EntryDate:    entryDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEntry(c *gin.Context) {
	resp, err := s.entry.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateEntry(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	entryDate, err := parseOptionalDate(req.EntryDate)
	if err != nil {
		AbortWithError(c, newValidationError("entry_date", "invalid_entry_date", "expected YYYY-MM-DD"))
		return
	}

	resp, err := s.entry.Update(c.Request.Context(), c.Param("id"), entrydomain.UpdateEntryRequest{
		JarGiven:     req.JarGiven,
		JarTaken:     req.JarTaken,
		CapsuleGiven: req.CapsuleGiven,
		CapsuleTaken: req.CapsuleTaken,
		CustomerPay:  req.CustomerPay,
		EntryDate:    entryDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteEntry(c *gin.Context) {
	if err := s.entry.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListCustomerEntries(c *gin.Context) {
	var query struct {
		pagination.KeysetQuery
		From string `form:"from"`
		To   string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalDate(query.From)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "expected YYYY-MM-DD"))
		return
	}
	to, err := parseOptionalDate(query.To)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "expected YYYY-MM-DD"))
		return
	}

	resp, err := s.entry.ListByCustomer(c.Request.Context(), entrydomain.ListEntriesRequest{
		KeysetQuery: query.KeysetQuery,
		CustomerID:  c.Param("id"),
		From:        from,
		To:          to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CustomerSummary(c *gin.Context) {
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
		AbortWithError(c, newValidationError("from", "invalid_from", "expected YYYY-MM-DD"))
		return
	}
	to, err := parseOptionalDate(query.To)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "expected YYYY-MM-DD"))
		return
	}

	resp, err := s.entry.Summary(c.Request.Context(), entrydomain.SummaryRequest{
		CustomerID: c.Param("id"),
		From:       from,
		To:         to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
