package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/satishbabariya/datatables-go/internal/core/datatable"
	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
	"github.com/satishbabariya/datatables-go/internal/logging"
)

// TableFactory builds a fresh Table for a configured name. It returns an
// error wrapping domain.ErrUnknownTable for names it does not know.
type TableFactory func(name string) (*datatable.Table, error)

// TableHandler serves table renders.
type TableHandler struct {
	factory TableFactory
	debug   bool
}

// NewTableHandler creates a handler. With allowDebug, a request carrying
// debug=true receives the SQL instead of rows.
func NewTableHandler(factory TableFactory, allowDebug bool) *TableHandler {
	return &TableHandler{factory: factory, debug: allowDebug}
}

// Render handles GET and POST /tables/:name.
func (h *TableHandler) Render(c *gin.Context) {
	name := c.Param("name")

	tbl, err := h.factory(name)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTable) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown table: " + name})
			return
		}
		logging.Error("failed to build table", "table", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build table"})
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form body"})
		return
	}
	req := ParseRequest(c.Request.Form)

	if h.debug && c.Request.Form.Get("debug") == "true" {
		tbl.Debug(true)
	}

	result, err := tbl.Make(c.Request.Context(), req)
	if err != nil {
		logging.Error("render failed", "table", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// NewRouter wires the table routes, a health check and, when metrics is
// non-nil, the metrics endpoint.
func NewRouter(h *TableHandler, metrics http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	tables := router.Group("/tables")
	tables.GET("/:name", h.Render)
	tables.POST("/:name", h.Render)

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}
	return router
}
