package http

import (
	"errors"
	"net/http"

	"kuchikomi/pkg/logger"
	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/usecase"

	"github.com/gin-gonic/gin"
)

// maxUploadRequestBytes leaves room for the form fields next to a
// full-size image.
const maxUploadRequestBytes = usecase.MaxImageBytes + 1<<20

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

type searchCriteria struct {
	Area       string `form:"area" json:"area"`
	StoreName  string `form:"store_name" json:"store_name"`
	PriceRange string `form:"price_range" json:"price_range"`
	School     string `form:"school" json:"school"`
}

// Feed godoc
// @Summary      Post feed
// @Description  All posts, newest first, with like counts and the posts liked by the current user
// @Tags         posts
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       / [get]
func (h *PostHandler) Feed(c *gin.Context) {
	posts, err := h.postUseCase.ListPosts(c.Request.Context(), entity.PostFilter{})
	if err != nil {
		h.logger.Error("Failed to load feed: %v", err)
		currentSession(c).AddFlash(flashError, msgFetchFailed)
		renderPage(c, http.StatusInternalServerError, gin.H{"posts": []*entity.PostSummary{}, "liked_post_ids": []int64{}})
		return
	}

	renderPage(c, http.StatusOK, gin.H{
		"posts":          emptyIfNil(posts),
		"liked_post_ids": h.likedPostIDs(c),
	})
}

// Search godoc
// @Summary      Search posts
// @Description  Substring match on area and store name, exact match on price range and school. No criteria returns the feed.
// @Tags         posts
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        area formData string false "Area substring"
// @Param        store_name formData string false "Store name substring"
// @Param        price_range formData string false "Price range"
// @Param        school formData string false "School tag"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /search [get]
// @Router       /search [post]
func (h *PostHandler) Search(c *gin.Context) {
	var criteria searchCriteria
	if err := c.ShouldBind(&criteria); err != nil {
		criteria = searchCriteria{}
	}

	data := gin.H{
		"search":         criteria,
		"price_options":  h.postUseCase.PriceOptions(),
		"school_options": h.schoolOptions(c),
	}

	posts, err := h.postUseCase.ListPosts(c.Request.Context(), entity.PostFilter{
		Area:       criteria.Area,
		StoreName:  criteria.StoreName,
		PriceRange: criteria.PriceRange,
		School:     criteria.School,
	})
	if err != nil {
		h.logger.Error("Failed to search posts: %v", err)
		currentSession(c).AddFlash(flashError, msgSearchFailed)
		data["posts"] = []*entity.PostSummary{}
		data["liked_post_ids"] = []int64{}
		renderPage(c, http.StatusInternalServerError, data)
		return
	}

	data["posts"] = emptyIfNil(posts)
	data["liked_post_ids"] = h.likedPostIDs(c)
	renderPage(c, http.StatusOK, data)
}

// PostForm godoc
// @Summary      Post form options
// @Description  Price and school options for the create form
// @Tags         posts
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      302  {string}  string "No session identity"
// @Router       /post [get]
func (h *PostHandler) PostForm(c *gin.Context) {
	if !currentIdentity(c).Present() {
		fail(c, http.StatusUnauthorized, msgNoIdentity, "/")
		return
	}
	h.renderForm(c, http.StatusOK, postForm{})
}

type postForm struct {
	StoreName  string `json:"store_name"`
	Area       string `json:"area"`
	Caption    string `json:"caption"`
	PriceRange string `json:"price_range"`
	School     string `json:"school"`
}

func (h *PostHandler) renderForm(c *gin.Context, status int, form postForm) {
	renderPage(c, status, gin.H{
		"form":           form,
		"price_options":  h.postUseCase.PriceOptions(),
		"school_options": h.schoolOptions(c),
	})
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Upload a JPEG or PNG photo (up to 10MB) with store details
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Param        image formData file true "Photo (jpg/jpeg/png)"
// @Param        store_name formData string true "Store name (max 50)"
// @Param        area formData string true "Area (max 100)"
// @Param        price_range formData string true "Price range"
// @Param        caption formData string false "Caption (max 500)"
// @Param        school formData string false "School tag"
// @Success      302  {string}  string "Redirect to the feed"
// @Success      201  {object}  map[string]interface{} "AJAX callers"
// @Failure      400  {object}  map[string]interface{}
// @Failure      413  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /post [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	identity := currentIdentity(c)
	if !identity.Present() {
		fail(c, http.StatusUnauthorized, msgNoIdentity, "/")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadRequestBytes)
	image, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			currentSession(c).AddFlash(flashError, msgRequestTooLarge)
			h.renderForm(c, http.StatusRequestEntityTooLarge, postForm{})
			return
		}
		image = nil
	}

	form := postForm{
		StoreName:  c.PostForm("store_name"),
		Area:       c.PostForm("area"),
		Caption:    c.PostForm("caption"),
		PriceRange: c.PostForm("price_range"),
		School:     c.PostForm("school"),
	}

	post, err := h.postUseCase.CreatePost(c.Request.Context(), usecase.CreatePostInput{
		UserID:     identity.UserID,
		Caption:    form.Caption,
		PriceRange: form.PriceRange,
		Area:       form.Area,
		StoreName:  form.StoreName,
		School:     form.School,
		Image:      image,
	})
	if err != nil {
		var verr *usecase.ValidationError
		session := currentSession(c)
		switch {
		case errors.As(err, &verr):
			for _, msg := range validationMessages(verr) {
				session.AddFlash(flashError, msg)
			}
			h.renderForm(c, http.StatusBadRequest, form)
		case errors.Is(err, entity.ErrUpload):
			h.logger.Error("Failed to upload image: %v", err)
			session.AddFlash(flashError, msgUploadFailed)
			h.renderForm(c, http.StatusInternalServerError, form)
		default:
			h.logger.Error("Failed to create post: %v", err)
			session.AddFlash(flashError, msgPostSaveFailed)
			h.renderForm(c, http.StatusInternalServerError, form)
		}
		return
	}

	finish(c, http.StatusCreated, flashSuccess, msgPostCreated, "/", gin.H{"post": post})
}

// Account godoc
// @Summary      Own posts
// @Description  Posts of the current user with the session privilege flags
// @Tags         account
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      302  {string}  string "No session identity"
// @Router       /account [get]
func (h *PostHandler) Account(c *gin.Context) {
	identity := currentIdentity(c)
	if !identity.Present() {
		fail(c, http.StatusUnauthorized, msgUserLoadFailed, "/")
		return
	}

	_, impersonating := currentSession(c).Impersonating()
	data := gin.H{
		"username":      identity.Username,
		"is_admin":      identity.IsAdmin,
		"impersonating": impersonating,
	}

	posts, err := h.postUseCase.ListPosts(c.Request.Context(), entity.PostFilter{UserID: identity.UserID})
	if err != nil {
		h.logger.Error("Failed to load account posts: %v", err)
		currentSession(c).AddFlash(flashError, msgAccountFailed)
		data["posts"] = []*entity.PostSummary{}
		renderPage(c, http.StatusInternalServerError, data)
		return
	}

	data["posts"] = emptyIfNil(posts)
	renderPage(c, http.StatusOK, data)
}

// DeletePost godoc
// @Summary      Delete own post
// @Tags         posts
// @Produce      json
// @Param        id path int true "Post ID"
// @Success      302  {string}  string "Redirect to the account page"
// @Failure      403  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /delete_post/{id} [post]
func (h *PostHandler) DeletePost(c *gin.Context) {
	identity := currentIdentity(c)
	if !identity.Present() {
		fail(c, http.StatusUnauthorized, msgUserLoadFailed, "/account")
		return
	}

	postID, err := parseID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, msgDeleteForbidden, "/account")
		return
	}

	err = h.postUseCase.DeletePost(c.Request.Context(), postID, identity)
	switch {
	case err == nil:
		finish(c, http.StatusOK, flashSuccess, msgPostDeleted, "/account", nil)
	case errors.Is(err, entity.ErrNotFound), errors.Is(err, entity.ErrForbidden):
		fail(c, http.StatusForbidden, msgDeleteForbidden, "/account")
	default:
		h.logger.Error("Failed to delete post %d: %v", postID, err)
		fail(c, http.StatusInternalServerError, msgDeleteFailed, "/account")
	}
}

func (h *PostHandler) likedPostIDs(c *gin.Context) []int64 {
	return likedPostIDs(c, h.postUseCase, h.logger)
}

func (h *PostHandler) schoolOptions(c *gin.Context) []string {
	options, err := h.postUseCase.SchoolOptions(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load school options: %v", err)
		return []string{}
	}
	return options
}

// likedPostIDs answers an empty list when the lookup fails so the page
// still renders.
func likedPostIDs(c *gin.Context, postUseCase usecase.PostUseCase, log *logger.Logger) []int64 {
	ids, err := postUseCase.LikedPostIDs(c.Request.Context(), currentIdentity(c).UserID)
	if err != nil {
		log.Error("Failed to load liked posts: %v", err)
		return []int64{}
	}
	return ids
}
