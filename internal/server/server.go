// Package server exposes the analytics and search HTTP API over the
// normalized invoice schema.
package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/flowbit/invoice-analytics/internal/export"
	"github.com/flowbit/invoice-analytics/internal/nlsql"
	"github.com/flowbit/invoice-analytics/internal/repository"
)

// Server bundles the HTTP handlers and their collaborators.
type Server struct {
	invoices        repository.InvoiceRepository
	stats           repository.StatsRepository
	exporter        *export.Service
	chat            *nlsql.Client
	defaultPageSize int
	logger          *slog.Logger
}

func NewServer(
	invoices repository.InvoiceRepository,
	stats repository.StatsRepository,
	exporter *export.Service,
	chat *nlsql.Client,
	defaultPageSize int,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultPageSize <= 0 {
		defaultPageSize = 49
	}
	return &Server{
		invoices:        invoices,
		stats:           stats,
		exporter:        exporter,
		chat:            chat,
		defaultPageSize: defaultPageSize,
		logger:          logger,
	}
}

// Router wires all routes onto a gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/", s.handleRoot)
	r.GET("/stats", s.handleStats)
	r.GET("/invoice-trends", s.handleInvoiceTrends)
	r.GET("/vendors/top10", s.handleTopVendors)
	r.GET("/category-spend", s.handleCategorySpend)
	r.GET("/cash-outflow", s.handleCashOutflow)
	r.GET("/invoices", s.handleInvoices)
	r.GET("/invoices/export", s.handleInvoicesExport)
	r.POST("/chat-with-data", s.handleChatWithData)

	return r
}

func (s *Server) handleRoot(c *gin.Context) {
	c.String(200, "invoice-analytics API running")
}
