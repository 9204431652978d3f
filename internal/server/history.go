package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	historydomain "github.com/ayz7879/fg-plant/internal/history/domain"
	"github.com/ayz7879/fg-plant/pkg/db/pagination"
)

func (s *Server) ListHistory(c *gin.Context) {
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

	resp, err := s.history.List(c.Request.Context(), historydomain.ListHistoryRequest{
		KeysetQuery: query.KeysetQuery,
		StartDate:   from,
		EndDate:     to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) HistorySummary(c *gin.Context) {
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

	resp, err := s.history.Summary(c.Request.Context(), from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
