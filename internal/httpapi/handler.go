package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"quantumassembler/internal/archive"
	"quantumassembler/internal/core"
	"quantumassembler/internal/game"
)

// Game is the surface the API drives.
type Game interface {
	Grid() game.GridView
	Resources() game.Resources
	SetCell(ctx context.Context, x, y int, kind core.CellType, tier decimal.Decimal, dir core.Direction) error
	BuyCell(ctx context.Context, x, y int, kind core.CellType, tier decimal.Decimal, dir core.Direction) (bool, error)
	RotateCell(ctx context.Context, x, y int, rotation core.Rotation) error
	Resize(ctx context.Context, x, y int) error
	Save(ctx context.Context) error
	ExportSave(ctx context.Context) (archive.Info, error)
	ImportSave(ctx context.Context, key string) error
}

var _ Game = (*game.Game)(nil)

type response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

// CellRequest places or buys a cell. Tier accepts a number or a numeric
// string.
type CellRequest struct {
	Type      core.CellType   `json:"type" binding:"required"`
	Tier      decimal.Decimal `json:"tier"`
	Direction core.Direction  `json:"direction"`
}

// RotateRequest carries "cw", "ccw" or an absolute direction.
type RotateRequest struct {
	Rotation string `json:"rotation" binding:"required"`
}

// ResizeRequest carries the new grid size.
type ResizeRequest struct {
	X int `json:"x" binding:"required"`
	Y int `json:"y" binding:"required"`
}

// ImportRequest selects an archived save; empty means the newest.
type ImportRequest struct {
	Key string `json:"key"`
}

// Handler maps routes to Game calls.
type Handler struct {
	game Game
}

// NewHandler returns a handler for g.
func NewHandler(g Game) *Handler { return &Handler{game: g} }

// RegisterRoutes mounts the API on group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/grid", h.GetGrid)
	group.GET("/resources", h.GetResources)
	group.PUT("/cells/:x/:y", h.PutCell)
	group.POST("/cells/:x/:y/buy", h.BuyCell)
	group.POST("/cells/:x/:y/rotate", h.RotateCell)
	group.POST("/resize", h.Resize)
	group.POST("/saves", h.Save)
	group.POST("/saves/import", h.Import)
}

func (h *Handler) GetGrid(c *gin.Context) { h.ok(c, h.game.Grid()) }

func (h *Handler) GetResources(c *gin.Context) { h.ok(c, h.game.Resources()) }

func (h *Handler) PutCell(c *gin.Context) {
	x, y, req, ok := h.bindCell(c)
	if !ok {
		return
	}
	if err := h.game.SetCell(c.Request.Context(), x, y, req.Type, req.Tier, req.Direction); err != nil {
		h.respondErr(c, err)
		return
	}
	h.ok(c, h.game.Grid())
}

func (h *Handler) BuyCell(c *gin.Context) {
	x, y, req, ok := h.bindCell(c)
	if !ok {
		return
	}
	bought, err := h.game.BuyCell(c.Request.Context(), x, y, req.Type, req.Tier, req.Direction)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	if !bought {
		h.fail(c, http.StatusPaymentRequired, "not enough energy")
		return
	}
	h.ok(c, h.game.Resources())
}

func (h *Handler) RotateCell(c *gin.Context) {
	x, y, ok := h.coords(c)
	if !ok {
		return
	}
	var req RotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err.Error())
		return
	}
	rotation, err := core.ParseRotation(req.Rotation)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	if err := h.game.RotateCell(c.Request.Context(), x, y, rotation); err != nil {
		h.respondErr(c, err)
		return
	}
	h.ok(c, h.game.Grid())
}

func (h *Handler) Resize(c *gin.Context) {
	var req ResizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.game.Resize(c.Request.Context(), req.X, req.Y); err != nil {
		h.respondErr(c, err)
		return
	}
	h.ok(c, h.game.Grid())
}

// Save persists to the save store and, when an archive is configured, also
// exports a copy.
func (h *Handler) Save(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.game.Save(ctx); err != nil {
		h.respondErr(c, err)
		return
	}
	info, err := h.game.ExportSave(ctx)
	if errors.Is(err, game.ErrNoArchive) {
		h.ok(c, gin.H{"saved": true})
		return
	}
	if err != nil {
		h.respondErr(c, err)
		return
	}
	h.ok(c, gin.H{"saved": true, "archive": info})
}

func (h *Handler) Import(c *gin.Context) {
	var req ImportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.fail(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := h.game.ImportSave(c.Request.Context(), req.Key); err != nil {
		h.respondErr(c, err)
		return
	}
	h.ok(c, h.game.Grid())
}

func (h *Handler) coords(c *gin.Context) (int, int, bool) {
	x, errX := strconv.Atoi(c.Param("x"))
	y, errY := strconv.Atoi(c.Param("y"))
	if errX != nil || errY != nil {
		h.fail(c, http.StatusBadRequest, "coordinates must be integers")
		return 0, 0, false
	}
	return x, y, true
}

func (h *Handler) bindCell(c *gin.Context) (int, int, CellRequest, bool) {
	x, y, ok := h.coords(c)
	if !ok {
		return 0, 0, CellRequest{}, false
	}
	var req CellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err.Error())
		return 0, 0, CellRequest{}, false
	}
	return x, y, req, true
}

func (h *Handler) ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, response{Code: 0, Data: data})
}

func (h *Handler) fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, response{Code: status, Msg: msg})
}

func (h *Handler) respondErr(c *gin.Context, err error) {
	_ = c.Error(err)
	h.fail(c, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var unknownKind core.ErrUnknownKind
	var unknownRotation core.ErrUnknownRotation
	switch {
	case errors.Is(err, core.ErrOutOfBounds), errors.Is(err, core.ErrInvalidArgument), errors.As(err, &unknownKind), errors.As(err, &unknownRotation):
		return http.StatusBadRequest
	case errors.Is(err, archive.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNoArchive):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
