package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleStats(c *gin.Context) {
	overview, err := s.stats.Overview(c.Request.Context())
	if err != nil {
		s.logger.Error("stats query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_invoices":     overview.TotalInvoices,
		"documents_uploaded": overview.TotalInvoices,
		"total_spend":        overview.TotalSpend,
		"total_subtotal":     overview.TotalSubTotal,
		"total_tax":          overview.TotalTax,
		"avg_invoice_value":  overview.AvgInvoiceValue,
		"avg_tax_rate":       overview.AvgTaxRate,
		"total_line_items":   overview.TotalLineItems,
	})
}

func (s *Server) handleInvoiceTrends(c *gin.Context) {
	points, err := s.stats.MonthlyTrends(c.Request.Context())
	if err != nil {
		s.logger.Error("invoice trends query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) handleTopVendors(c *gin.Context) {
	rows, err := s.stats.TopVendors(c.Request.Context(), 10)
	if err != nil {
		s.logger.Error("top vendors query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) handleCategorySpend(c *gin.Context) {
	rows, err := s.stats.CategorySpend(c.Request.Context())
	if err != nil {
		s.logger.Error("category spend query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) handleCashOutflow(c *gin.Context) {
	rows, err := s.stats.CashOutflow(c.Request.Context())
	if err != nil {
		s.logger.Error("cash outflow query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}
