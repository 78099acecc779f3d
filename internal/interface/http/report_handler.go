package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lostudea/lostudea-api/internal/application"
	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/internal/domain/repository"
	"github.com/lostudea/lostudea-api/internal/interface/middleware"
	"github.com/lostudea/lostudea-api/pkg/response"
	"github.com/lostudea/lostudea-api/pkg/validation"
)

// ReportHandler serves lost/found report CRUD, match candidates, match
// confirmation, and full-text search. All reads come from the item
// store's cache; writes go through the store so the change feed keeps
// every instance in sync.
type ReportHandler struct {
	Store  *application.ItemStore
	Users  *application.UserService
	Images *application.ImageUploader
	Index  *application.ReportIndex
	Logger *logrus.Logger
}

func NewReportHandler(store *application.ItemStore, users *application.UserService, images *application.ImageUploader, index *application.ReportIndex, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{Store: store, Users: users, Images: images, Index: index, Logger: logger}
}

type lostReportRequest struct {
	Type        string    `json:"type" binding:"required"`
	Locations   []string  `json:"locations" binding:"required,min=1,max=2"`
	LostDate    time.Time `json:"lost_date" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Image       string    `json:"image"`
}

type foundReportRequest struct {
	Type      string    `json:"type" binding:"required"`
	Location  string    `json:"location" binding:"required"`
	FoundDate time.Time `json:"found_date" binding:"required"`
	Image     string    `json:"image"`
}

type lostReportPatch struct {
	Type        *string    `json:"type"`
	Locations   []string   `json:"locations" binding:"omitempty,min=1,max=2"`
	LostDate    *time.Time `json:"lost_date"`
	Description *string    `json:"description"`
	Image       *string    `json:"image"`
	Status      *string    `json:"status" binding:"omitempty,oneof=searching matched found closed"`
}

type foundReportPatch struct {
	Type      *string    `json:"type"`
	Location  *string    `json:"location"`
	FoundDate *time.Time `json:"found_date"`
	Image     *string    `json:"image"`
	Status    *string    `json:"status" binding:"omitempty,oneof=pending matched delivered"`
}

type confirmMatchRequest struct {
	FoundItemID string `json:"found_item_id" binding:"required,uuid"`
}

// Catalogs returns the item-type and campus-zone catalogs the report
// forms are built from.
func (h *ReportHandler) Catalogs(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"item_types": entity.ItemTypes,
		"locations":  entity.Locations(),
	}, "catalogs", nil)
}

func (h *ReportHandler) CreateLost(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if _, err := h.Users.RequireSeeker(c.Request.Context(), uid); err != nil {
		response.Error[any](c, http.StatusForbidden, "complete your registration to report lost items", nil)
		return
	}

	var req lostReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	imageURL, err := h.Images.Store(c.Request.Context(), uid, req.Image)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid image", nil)
		return
	}

	id, err := h.Store.AddLostItem(c.Request.Context(), application.LostItemInput{
		Type:        req.Type,
		Locations:   toEntityLocations(req.Locations),
		LostDate:    req.LostDate,
		Description: req.Description,
		ImageURL:    imageURL,
		SeekerID:    uid,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrConflict) {
			status = http.StatusBadRequest
		}
		response.Error[any](c, status, "failed to save report", h.Store.Err())
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": id}, "lost report created", nil)
}

func (h *ReportHandler) CreateFound(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	var req foundReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	image, err := h.Images.Store(c.Request.Context(), uid, req.Image)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid image", nil)
		return
	}

	id, err := h.Store.AddFoundItem(c.Request.Context(), application.FoundItemInput{
		Type:      req.Type,
		Location:  entity.Location(req.Location),
		FoundDate: req.FoundDate,
		Image:     image,
		FinderID:  uid,
	})
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to save report", h.Store.Err())
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": id}, "found report created", nil)
}

// ListLost returns the caller's own lost reports.
func (h *ReportHandler) ListLost(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	items := h.Store.LostItemsByUser(uid)
	response.Success(c, http.StatusOK, lostViews(items), "lost reports", gin.H{"count": len(items)})
}

// ListFound returns every pending found report, so seekers can browse
// what has been turned in.
func (h *ReportHandler) ListFound(c *gin.Context) {
	all := h.Store.FoundItems()
	pending := make([]entity.FoundItem, 0, len(all))
	for _, it := range all {
		if it.Status == entity.FoundStatusPending {
			pending = append(pending, it)
		}
	}
	response.Success(c, http.StatusOK, foundViews(pending), "found reports", gin.H{"count": len(pending)})
}

// ListMine returns the caller's own found reports.
func (h *ReportHandler) ListMine(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	items := h.Store.FoundItemsByUser(uid)
	response.Success(c, http.StatusOK, foundViews(items), "found reports", gin.H{"count": len(items)})
}

func (h *ReportHandler) GetLost(c *gin.Context) {
	item := h.Store.LostItemByID(c.Param("id"))
	if item == nil {
		response.Error[any](c, http.StatusNotFound, "report not found", nil)
		return
	}
	response.Success(c, http.StatusOK, lostView(item), "lost report", nil)
}

func (h *ReportHandler) GetFound(c *gin.Context) {
	item := h.Store.FoundItemByID(c.Param("id"))
	if item == nil {
		response.Error[any](c, http.StatusNotFound, "report not found", nil)
		return
	}
	response.Success(c, http.StatusOK, foundView(item), "found report", nil)
}

func (h *ReportHandler) UpdateLost(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	item := h.Store.LostItemByID(c.Param("id"))
	if item == nil {
		response.Error[any](c, http.StatusNotFound, "report not found", nil)
		return
	}
	if item.SeekerID != uid && !c.GetBool(middleware.CtxIsAdminKey) {
		response.Error[any](c, http.StatusForbidden, "not your report", nil)
		return
	}

	var req lostReportPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	patch := application.LostItemPatch{
		Type:        req.Type,
		Locations:   toEntityLocations(req.Locations),
		LostDate:    req.LostDate,
		Description: req.Description,
	}
	if req.Image != nil {
		url, err := h.Images.Store(c.Request.Context(), uid, *req.Image)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid image", nil)
			return
		}
		patch.ImageURL = &url
	}
	if req.Status != nil {
		st := entity.LostStatus(*req.Status)
		patch.Status = &st
	}

	if err := h.Store.UpdateLostItem(c.Request.Context(), item.ID, patch); err != nil {
		if errors.Is(err, application.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "report not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to update report", h.Store.Err())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": item.ID}, "lost report updated", nil)
}

func (h *ReportHandler) UpdateFound(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	item := h.Store.FoundItemByID(c.Param("id"))
	if item == nil {
		response.Error[any](c, http.StatusNotFound, "report not found", nil)
		return
	}
	if item.FinderID != uid && !c.GetBool(middleware.CtxIsAdminKey) {
		response.Error[any](c, http.StatusForbidden, "not your report", nil)
		return
	}

	var req foundReportPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	patch := application.FoundItemPatch{
		Type:      req.Type,
		FoundDate: req.FoundDate,
	}
	if req.Location != nil {
		loc := entity.Location(*req.Location)
		patch.Location = &loc
	}
	if req.Image != nil {
		blob, err := h.Images.Store(c.Request.Context(), uid, *req.Image)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid image", nil)
			return
		}
		patch.Image = &blob
	}
	if req.Status != nil {
		st := entity.FoundStatus(*req.Status)
		patch.Status = &st
	}

	if err := h.Store.UpdateFoundItem(c.Request.Context(), item.ID, patch); err != nil {
		if errors.Is(err, application.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "report not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to update report", h.Store.Err())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": item.ID}, "found report updated", nil)
}

func (h *ReportHandler) DeleteLost(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	item := h.Store.LostItemByID(c.Param("id"))
	if item == nil {
		response.Error[any](c, http.StatusNotFound, "report not found", nil)
		return
	}
	if item.SeekerID != uid && !c.GetBool(middleware.CtxIsAdminKey) {
		response.Error[any](c, http.StatusForbidden, "not your report", nil)
		return
	}
	if err := h.Store.DeleteLostItem(c.Request.Context(), item.ID); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to delete report", h.Store.Err())
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"id": item.ID}, "lost report deleted", nil)
}

func (h *ReportHandler) DeleteFound(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	item := h.Store.FoundItemByID(c.Param("id"))
	if item == nil {
		response.Error[any](c, http.StatusNotFound, "report not found", nil)
		return
	}
	if item.FinderID != uid && !c.GetBool(middleware.CtxIsAdminKey) {
		response.Error[any](c, http.StatusForbidden, "not your report", nil)
		return
	}
	if err := h.Store.DeleteFoundItem(c.Request.Context(), item.ID); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to delete report", h.Store.Err())
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"id": item.ID}, "found report deleted", nil)
}

// Candidates lists pending found reports whose type equals the lost
// report's type.
func (h *ReportHandler) Candidates(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	item := h.Store.LostItemByID(c.Param("id"))
	if item == nil {
		response.Error[any](c, http.StatusNotFound, "report not found", nil)
		return
	}
	if item.SeekerID != uid && !c.GetBool(middleware.CtxIsAdminKey) {
		response.Error[any](c, http.StatusForbidden, "not your report", nil)
		return
	}
	candidates := h.Store.Matches(item.ID)
	response.Success(c, http.StatusOK, foundViews(candidates), "match candidates", gin.H{"count": len(candidates)})
}

// Matches lists the confirmed matches recorded against a lost report.
func (h *ReportHandler) Matches(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	item := h.Store.LostItemByID(c.Param("id"))
	if item == nil {
		response.Error[any](c, http.StatusNotFound, "report not found", nil)
		return
	}
	if item.SeekerID != uid && !c.GetBool(middleware.CtxIsAdminKey) {
		response.Error[any](c, http.StatusForbidden, "not your report", nil)
		return
	}
	matches := h.Store.MatchesByLostItemID(item.ID)
	response.Success(c, http.StatusOK, matchViews(matches), "matches", gin.H{"count": len(matches)})
}

// ConfirmMatch links a lost report to a found report. Both reports move
// to matched atomically; a conflict means one of them already left its
// initial state.
func (h *ReportHandler) ConfirmMatch(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	item := h.Store.LostItemByID(c.Param("id"))
	if item == nil {
		response.Error[any](c, http.StatusNotFound, "report not found", nil)
		return
	}
	if item.SeekerID != uid && !c.GetBool(middleware.CtxIsAdminKey) {
		response.Error[any](c, http.StatusForbidden, "not your report", nil)
		return
	}

	var req confirmMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	match, err := h.Store.ConfirmMatch(c.Request.Context(), item.ID, req.FoundItemID)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNotFound):
			response.Error[any](c, http.StatusNotFound, "report not found", nil)
		case errors.Is(err, repository.ErrConflict):
			response.Error[any](c, http.StatusConflict, "report is no longer available for matching", nil)
		default:
			response.Error[any](c, http.StatusInternalServerError, "failed to confirm match", h.Store.Err())
		}
		return
	}
	response.Success(c, http.StatusCreated, matchView(match), "match confirmed", nil)
}

// Search runs a full-text query over indexed reports.
func (h *ReportHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	hits, err := h.Index.Search(c.Request.Context(), q, 25)
	if err != nil {
		h.Logger.WithError(err).Warn("report search failed")
		response.Error[any](c, http.StatusServiceUnavailable, "search is unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

func lostView(it *entity.LostItem) gin.H {
	locations := make([]string, len(it.Locations))
	for i, l := range it.Locations {
		locations[i] = string(l)
	}
	return gin.H{
		"id":          it.ID,
		"type":        it.Type,
		"locations":   locations,
		"lost_date":   it.LostDate,
		"description": it.Description,
		"image_url":   it.ImageURL,
		"status":      it.Status,
		"seeker_id":   it.SeekerID,
		"created_at":  it.CreatedAt,
		"updated_at":  it.UpdatedAt,
	}
}

func lostViews(items []entity.LostItem) []gin.H {
	out := make([]gin.H, len(items))
	for i := range items {
		out[i] = lostView(&items[i])
	}
	return out
}

func foundView(it *entity.FoundItem) gin.H {
	return gin.H{
		"id":         it.ID,
		"type":       it.Type,
		"location":   string(it.Location),
		"found_date": it.FoundDate,
		"image":      it.Image,
		"status":     it.Status,
		"finder_id":  it.FinderID,
		"created_at": it.CreatedAt,
		"updated_at": it.UpdatedAt,
	}
}

func foundViews(items []entity.FoundItem) []gin.H {
	out := make([]gin.H, len(items))
	for i := range items {
		out[i] = foundView(&items[i])
	}
	return out
}

func matchView(m *entity.Match) gin.H {
	return gin.H{
		"id":            m.ID,
		"lost_item_id":  m.LostItemID,
		"found_item_id": m.FoundItemID,
		"status":        m.Status,
		"match_date":    m.MatchDate,
	}
}

func matchViews(matches []entity.Match) []gin.H {
	out := make([]gin.H, len(matches))
	for i := range matches {
		out[i] = matchView(&matches[i])
	}
	return out
}

func toEntityLocations(in []string) []entity.Location {
	if in == nil {
		return nil
	}
	out := make([]entity.Location, len(in))
	for i, l := range in {
		out[i] = entity.Location(l)
	}
	return out
}
