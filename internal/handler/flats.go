package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/flatwise/internal/service"
)

// FlatHandler serves flats and move-in/move-out.
type FlatHandler struct {
	flats *service.FlatService
}

func NewFlatHandler(s *service.FlatService) *FlatHandler {
	return &FlatHandler{flats: s}
}

type createFlatReq struct {
	Name        string `json:"name" binding:"required,max=128"`
	FirstUserID string `json:"first_user_id"`
}

type updateFlatReq struct {
	Name string `json:"name" binding:"required,max=128"`
}

// moveInReq lists the item IDs the new member does not buy into.
type moveInReq struct {
	ExcludeItems []string `json:"exclude_items"`
}

type flatBalancesView struct {
	Members []memberBalanceView `json:"members"`
	Debts   []debtView          `json:"debts"`
}

// Create handles POST /flats.
func (h *FlatHandler) Create(c *gin.Context) {
	var req createFlatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, badRequest("%v", err))
		return
	}
	flat, err := h.flats.Create(c.Request.Context(), actor(c), req.Name, req.FirstUserID)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusCreated, newFlatView(flat))
}

// List handles GET /flats.
func (h *FlatHandler) List(c *gin.Context) {
	offset, limit, err := pageQuery(c)
	if err != nil {
		Error(c, err)
		return
	}
	flats, err := h.flats.List(c.Request.Context(), offset, limit)
	if err != nil {
		Error(c, err)
		return
	}
	out := make([]flatView, len(flats))
	for i, f := range flats {
		out[i] = newFlatView(f)
	}
	Success(c, http.StatusOK, out)
}

// Get handles GET /flats/:id.
func (h *FlatHandler) Get(c *gin.Context) {
	flat, err := h.flats.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, newFlatView(flat))
}

// Update handles PATCH /flats/:id.
func (h *FlatHandler) Update(c *gin.Context) {
	var req updateFlatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, badRequest("%v", err))
		return
	}
	flat, err := h.flats.Rename(c.Request.Context(), actor(c), c.Param("id"), req.Name)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, newFlatView(flat))
}

// Delete handles DELETE /flats/:id.
func (h *FlatHandler) Delete(c *gin.Context) {
	if err := h.flats.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, gin.H{"ok": true})
}

// MoveIn handles POST /flats/:id/move_in/:user_id?date=.
// The body is optional; an empty body excludes nothing.
func (h *FlatHandler) MoveIn(c *gin.Context) {
	date, err := dateQuery(c)
	if err != nil {
		Error(c, err)
		return
	}
	var req moveInReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			Error(c, badRequest("%v", err))
			return
		}
	}

	result, err := h.flats.MoveIn(c.Request.Context(), actor(c), c.Param("id"), c.Param("user_id"), req.ExcludeItems, date)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, newMoveView(result))
}

// MoveOut handles POST /flats/:id/move_out/:user_id?date=.
func (h *FlatHandler) MoveOut(c *gin.Context) {
	date, err := dateQuery(c)
	if err != nil {
		Error(c, err)
		return
	}
	result, err := h.flats.MoveOut(c.Request.Context(), actor(c), c.Param("id"), c.Param("user_id"), date)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, newMoveView(result))
}

// Balances handles GET /flats/:id/balances.
func (h *FlatHandler) Balances(c *gin.Context) {
	balances, err := h.flats.Balances(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	out := flatBalancesView{
		Members: make([]memberBalanceView, len(balances.Members)),
		Debts:   make([]debtView, len(balances.Debts)),
	}
	for i, b := range balances.Members {
		out.Members[i] = newMemberBalanceView(b)
	}
	for i, d := range balances.Debts {
		out.Debts[i] = debtView{From: d.From, To: d.To, Amount: d.Amount.StringFixed(2)}
	}
	Success(c, http.StatusOK, out)
}
