package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flowbit/invoice-analytics/internal/search"
)

// handleInvoices serves the paginated invoice list. The search token is run
// through the predicate synthesizer; an empty token means no filter at all.
func (s *Server) handleInvoices(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(s.defaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = s.defaultPageSize
	}

	preds := search.Synthesize(c.Query("search"))

	rows, total, err := s.invoices.Search(c.Request.Context(), preds, page, pageSize)
	if err != nil {
		s.logger.Error("invoice search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
		"data":     rows,
	})
}

func (s *Server) handleInvoicesExport(c *gin.Context) {
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, use YYYY-MM-DD"})
			return
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, use YYYY-MM-DD"})
			return
		}
		to = &t
	}

	xlsx, err := s.exporter.ExportInvoicesXLSX(c.Request.Context(), from, to)
	if err != nil {
		s.logger.Error("invoice export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", xlsx)
}
