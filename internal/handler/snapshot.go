package handler

import (
	"errors"
	"net/http"
	"strconv"

	"floatwatch/internal/domain"
	"floatwatch/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// requestFromQuery reads name, wear and category query parameters.
func requestFromQuery(c *gin.Context) (service.SnapshotRequest, error) {
	wear, err := domain.ParseWear(c.Query("wear"))
	if err != nil {
		return service.SnapshotRequest{}, err
	}
	category, err := domain.ParseCategory(c.Query("category"))
	if err != nil {
		return service.SnapshotRequest{}, err
	}
	return service.SnapshotRequest{
		BaseName: c.Query("name"),
		Wear:     wear,
		Category: category,
	}, nil
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrEmptyName) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// GetSnapshot godoc
// @Summary      Resolve a market snapshot
// @Description  Builds the canonical market name and returns lowest ask, highest bid and 24h sales
// @Tags         snapshots
// @Produce      json
// @Param        name      query  string  true   "Item base name (e.g., AK-47 | Redline)"
// @Param        wear      query  string  false  "Wear key (fn, mw, ft, ww, bs)"
// @Param        category  query  string  false  "Category (normal, stattrak, souvenir)"
// @Success      200  {object}  domain.Snapshot
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/snapshot [get]
func (h *Handler) GetSnapshot(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-snapshot")
	defer span.End()

	req, err := requestFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(attribute.String("item", req.BaseName))

	snap, err := h.snapshots.Resolve(ctx, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetDepth godoc
// @Summary      Price depth over several listing pages
// @Description  Returns count, min, median and 10% trimmed mean of the cheapest listings
// @Tags         snapshots
// @Produce      json
// @Param        name      query  string  true   "Item base name"
// @Param        wear      query  string  false  "Wear key (fn, mw, ft, ww, bs)"
// @Param        category  query  string  false  "Category (normal, stattrak, souvenir)"
// @Param        pages     query  int     false  "Pages to scan (capped by CSFLOAT_MAX_PAGES)"  default(1)
// @Success      200  {object}  domain.DepthQuote
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/depth [get]
func (h *Handler) GetDepth(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-depth")
	defer span.End()

	req, err := requestFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pages := 1
	if v := c.Query("pages"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "pages must be a positive integer"})
			return
		}
		pages = n
	}
	span.SetAttributes(attribute.String("item", req.BaseName), attribute.Int("pages", pages))

	quote, err := h.snapshots.DepthQuote(ctx, req, pages)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// GetMarketName godoc
// @Summary      Build a canonical market hash name
// @Description  Applies family rules, category markers and the wear suffix without calling the marketplace
// @Tags         snapshots
// @Produce      json
// @Param        name      query  string  true   "Item base name"
// @Param        wear      query  string  false  "Wear key (fn, mw, ft, ww, bs)"
// @Param        category  query  string  false  "Category (normal, stattrak, souvenir)"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /api/market-name [get]
func (h *Handler) GetMarketName(c *gin.Context) {
	req, err := requestFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name, err := h.snapshots.MarketName(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"market_hash_name": name})
}
