package http

import (
	"errors"
	"fmt"
	"net/http"

	"kuchikomi/pkg/logger"
	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/usecase"

	"github.com/gin-gonic/gin"
)

const adminPostsPath = "/admin/posts"

type TrackingHandler struct {
	trackingUseCase usecase.TrackingUseCase
	logger          *logger.Logger
}

func NewTrackingHandler(trackingUseCase usecase.TrackingUseCase, logger *logger.Logger) *TrackingHandler {
	return &TrackingHandler{
		trackingUseCase: trackingUseCase,
		logger:          logger,
	}
}

// RequireExportRights lets admin sessions and the advertiser account through.
func (h *TrackingHandler) RequireExportRights() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.trackingUseCase.CanExport(currentIdentity(c)) {
			abortJSON(c, http.StatusForbidden, msgForbidden)
			return
		}
		c.Next()
	}
}

// Go godoc
// @Summary      Tracked map redirect
// @Description  Records a click for sponsored posts and redirects to the store on Google Maps
// @Tags         tracking
// @Param        id path int true "Post ID"
// @Success      302  {string}  string "Redirect to Google Maps"
// @Failure      404  {object}  map[string]interface{}
// @Router       /go/{id} [get]
func (h *TrackingHandler) Go(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	target, err := h.trackingUseCase.Redirect(c.Request.Context(), postID)
	if err != nil {
		h.postError(c, postID, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// Coupon godoc
// @Summary      Coupon of a sponsored post
// @Tags         tracking
// @Produce      json
// @Param        id path int true "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /coupon/{id} [get]
func (h *TrackingHandler) Coupon(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	post, code, err := h.trackingUseCase.Coupon(c.Request.Context(), postID)
	if err != nil {
		h.postError(c, postID, err)
		return
	}
	renderPage(c, http.StatusOK, gin.H{"post": post, "code": code})
}

// AdminPosts godoc
// @Summary      Newest posts for editing
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Router       /admin/posts [get]
func (h *TrackingHandler) AdminPosts(c *gin.Context) {
	posts, err := h.trackingUseCase.AdminPosts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load admin posts: %v", err)
		abortJSON(c, http.StatusInternalServerError, msgFetchFailed)
		return
	}
	if posts == nil {
		posts = []*entity.Post{}
	}
	renderPage(c, http.StatusOK, gin.H{"posts": posts})
}

// AdminEditPost godoc
// @Summary      One post for editing
// @Tags         admin
// @Produce      json
// @Param        id path int true "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin/posts/{id}/edit [get]
func (h *TrackingHandler) AdminEditPost(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	post, err := h.trackingUseCase.AdminPost(c.Request.Context(), postID)
	if err != nil {
		h.postError(c, postID, err)
		return
	}
	renderPage(c, http.StatusOK, gin.H{"post": post})
}

// AdminUpdatePost godoc
// @Summary      Edit a post
// @Description  Submitted text fields replace the stored ones. The map link is kept only on an allowed Google Maps domain.
// @Tags         admin
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        id path int true "Post ID"
// @Param        store_name formData string false "Store name"
// @Param        area formData string false "Area"
// @Param        caption formData string false "Caption"
// @Param        price_range formData string false "Price range"
// @Param        school formData string false "School tag"
// @Param        google_maps_url formData string false "Google Maps link"
// @Success      302  {string}  string "Redirect to the admin post list"
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin/posts/{id}/edit [post]
func (h *TrackingHandler) AdminUpdatePost(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	input := usecase.AdminPostInput{
		StoreName:     optionalPostForm(c, "store_name"),
		Area:          optionalPostForm(c, "area"),
		Caption:       optionalPostForm(c, "caption"),
		PriceRange:    optionalPostForm(c, "price_range"),
		School:        optionalPostForm(c, "school"),
		GoogleMapsURL: c.PostForm("google_maps_url"),
	}

	post, err := h.trackingUseCase.AdminUpdatePost(c.Request.Context(), postID, input)
	if err != nil {
		h.postError(c, postID, err)
		return
	}
	finish(c, http.StatusOK, flashSuccess, msgPostUpdated, adminPostsPath, gin.H{"post": post})
}

// ExportMapClicks godoc
// @Summary      Map clicks as CSV
// @Tags         admin
// @Produce      text/csv
// @Success      200  {file}    file
// @Failure      403  {object}  map[string]interface{}
// @Router       /admin/export/map_clicks.csv [get]
func (h *TrackingHandler) ExportMapClicks(c *gin.Context) {
	data, err := h.trackingUseCase.ExportMapClicks(c.Request.Context())
	h.sendCSV(c, "map_clicks.csv", data, err)
}

// ExportCouponEvents godoc
// @Summary      Coupon views as CSV
// @Tags         admin
// @Produce      text/csv
// @Success      200  {file}    file
// @Failure      403  {object}  map[string]interface{}
// @Router       /admin/export/coupon_events.csv [get]
func (h *TrackingHandler) ExportCouponEvents(c *gin.Context) {
	data, err := h.trackingUseCase.ExportCouponEvents(c.Request.Context())
	h.sendCSV(c, "coupon_events.csv", data, err)
}

func (h *TrackingHandler) sendCSV(c *gin.Context, filename string, data []byte, err error) {
	if err != nil {
		h.logger.Error("Failed to export %s: %v", filename, err)
		abortJSON(c, http.StatusInternalServerError, msgInternal)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *TrackingHandler) postError(c *gin.Context, postID int64, err error) {
	if errors.Is(err, entity.ErrNotFound) || errors.Is(err, entity.ErrNotSponsored) {
		abortJSON(c, http.StatusNotFound, msgPostNotFound)
		return
	}
	h.logger.Error("Tracking request for post %d failed: %v", postID, err)
	abortJSON(c, http.StatusInternalServerError, msgInternal)
}

func optionalPostForm(c *gin.Context, key string) *string {
	if value, ok := c.GetPostForm(key); ok {
		return &value
	}
	return nil
}
