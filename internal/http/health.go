package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
	Catalog *CatalogStats     `json:"catalog,omitempty"`
}

// CatalogStats is a coarse snapshot of the catalog size, reported when the
// database is reachable.
type CatalogStats struct {
	Books   int64 `json:"books"`
	Authors int64 `json:"authors"`
}

type HealthController struct {
	db      *database.Database
	version string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"
	var stats *CatalogStats

	if h.db != nil {
		if err := h.pingDatabase(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
			stats = h.catalogStats()
		}
	} else {
		checks["database"] = "not configured"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
		Catalog: stats,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}

func (h *HealthController) pingDatabase() error {
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// catalogStats counts rows best-effort; a failed count leaves the field at
// zero rather than flipping the health status.
func (h *HealthController) catalogStats() *CatalogStats {
	stats := &CatalogStats{}
	h.db.DB.Model(&entities.Book{}).Count(&stats.Books)
	h.db.DB.Model(&entities.Author{}).Count(&stats.Authors)
	return stats
}
