package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lostudea/lostudea-api/internal/application"
	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/internal/domain/repository"
	"github.com/lostudea/lostudea-api/pkg/response"
	"github.com/lostudea/lostudea-api/pkg/validation"
)

// AdminHandler serves the staff surface: cross-user report listings,
// match verification, and delivery of held objects.
type AdminHandler struct {
	Store     *application.ItemStore
	Lifecycle *application.MatchLifecycle
	Logger    *logrus.Logger
}

func NewAdminHandler(store *application.ItemStore, lifecycle *application.MatchLifecycle, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Store: store, Lifecycle: lifecycle, Logger: logger}
}

// Dashboard summarizes report and match volumes per status.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	lost := h.Store.LostItems()
	found := h.Store.FoundItems()
	matches := h.Store.AllMatches()

	lostByStatus := map[entity.LostStatus]int{}
	for _, it := range lost {
		lostByStatus[it.Status]++
	}
	foundByStatus := map[entity.FoundStatus]int{}
	for _, it := range found {
		foundByStatus[it.Status]++
	}
	matchByStatus := map[entity.MatchStatus]int{}
	for _, m := range matches {
		matchByStatus[m.Status]++
	}

	response.Success(c, http.StatusOK, gin.H{
		"lost_total":      len(lost),
		"found_total":     len(found),
		"match_total":     len(matches),
		"lost_by_status":  lostByStatus,
		"found_by_status": foundByStatus,
		"match_by_status": matchByStatus,
		"store_loading":   h.Store.Loading(),
		"store_error":     h.Store.Err(),
	}, "dashboard", nil)
}

func (h *AdminHandler) ListLost(c *gin.Context) {
	items := h.Store.LostItems()
	response.Success(c, http.StatusOK, lostViews(items), "lost reports", gin.H{"count": len(items)})
}

func (h *AdminHandler) ListFound(c *gin.Context) {
	items := h.Store.FoundItems()
	response.Success(c, http.StatusOK, foundViews(items), "found reports", gin.H{"count": len(items)})
}

func (h *AdminHandler) ListMatches(c *gin.Context) {
	matches := h.Store.AllMatches()
	response.Success(c, http.StatusOK, matchViews(matches), "matches", gin.H{"count": len(matches)})
}

type matchStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=verified completed"`
}

// UpdateMatchStatus advances a match after staff verification or at
// hand-back.
func (h *AdminHandler) UpdateMatchStatus(c *gin.Context) {
	var req matchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	id := c.Param("id")
	if err := h.Lifecycle.Advance(c.Request.Context(), id, entity.MatchStatus(req.Status)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "match not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to update match", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "status": req.Status}, "match updated", nil)
}

// MarkDelivered flips a matched found report to delivered, completes its
// match, and notifies the seeker by email.
func (h *AdminHandler) MarkDelivered(c *gin.Context) {
	item := h.Store.FoundItemByID(c.Param("id"))
	if item == nil {
		response.Error[any](c, http.StatusNotFound, "report not found", nil)
		return
	}
	if item.Status != entity.FoundStatusMatched {
		response.Error[any](c, http.StatusConflict, "report is not in a matched state", nil)
		return
	}

	status := entity.FoundStatusDelivered
	if err := h.Store.UpdateFoundItem(c.Request.Context(), item.ID, application.FoundItemPatch{Status: &status}); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to update report", h.Store.Err())
		return
	}

	match := h.Store.MatchByFoundItemID(item.ID)
	if match != nil {
		if err := h.Lifecycle.Advance(c.Request.Context(), match.ID, entity.MatchStatusCompleted); err != nil {
			h.Logger.WithError(err).WithField("match_id", match.ID).Warn("delivered report but match completion failed")
		}
		if lost := h.Store.LostItemByID(match.LostItemID); lost != nil {
			h.Lifecycle.NotifyDelivered(c.Request.Context(), lost.SeekerID, item.Type.Label)
		}
	}

	response.Success(c, http.StatusOK, gin.H{"id": item.ID, "status": status}, "report delivered", nil)
}
