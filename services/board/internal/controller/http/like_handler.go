package http

import (
	"errors"
	"net/http"

	"kuchikomi/pkg/logger"
	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/usecase"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	likeUseCase usecase.LikeUseCase
	logger      *logger.Logger
}

func NewLikeHandler(likeUseCase usecase.LikeUseCase, logger *logger.Logger) *LikeHandler {
	return &LikeHandler{
		likeUseCase: likeUseCase,
		logger:      logger,
	}
}

// ToggleLike godoc
// @Summary      Like or unlike a post
// @Description  Send X-Requested-With: XMLHttpRequest for a JSON answer; other callers are redirected back with a flash message
// @Tags         likes
// @Produce      json
// @Param        id path int true "Post ID"
// @Param        X-Requested-With header string false "XMLHttpRequest for JSON"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /like/{id} [post]
func (h *LikeHandler) ToggleLike(c *gin.Context) {
	identity := currentIdentity(c)
	if !identity.Present() {
		if isAJAX(c) {
			fail(c, http.StatusUnauthorized, msgNoIdentityAJAX, "/")
			return
		}
		fail(c, http.StatusUnauthorized, msgNoIdentityPage, "/")
		return
	}

	back := backTo(c, "/")

	postID, err := parseID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, msgPostNotFound, back)
		return
	}

	state, err := h.likeUseCase.ToggleLike(c.Request.Context(), postID, identity.UserID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			fail(c, http.StatusNotFound, msgPostNotFound, back)
			return
		}
		h.logger.Error("Failed to toggle like on post %d: %v", postID, err)
		if isAJAX(c) {
			fail(c, http.StatusInternalServerError, msgLikeFailed, back)
			return
		}
		fail(c, http.StatusInternalServerError, msgLikeFailedPage, back)
		return
	}

	message, category := msgUnliked, flashInfo
	if state.Liked {
		message, category = msgLiked, flashSuccess
	}
	finish(c, http.StatusOK, category, message, back, gin.H{
		"like_count": state.LikeCount,
		"is_liked":   state.Liked,
	})
}
