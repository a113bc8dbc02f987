package http

import (
	"errors"
	"net/http"
	"strings"

	"kuchikomi/pkg/logger"
	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/usecase"

	"github.com/gin-gonic/gin"
)

const accountPath = "/account"

// AdminHandler serves privilege escalation and admin-only post actions.
type AdminHandler struct {
	identityUseCase usecase.IdentityUseCase
	postUseCase     usecase.PostUseCase
	logger          *logger.Logger
}

func NewAdminHandler(identityUseCase usecase.IdentityUseCase, postUseCase usecase.PostUseCase, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		identityUseCase: identityUseCase,
		postUseCase:     postUseCase,
		logger:          logger,
	}
}

// AdminLogin godoc
// @Summary      Escalate privileges
// @Description  The advertiser secret switches the session to the advertiser account; the admin secret grants admin to the current user
// @Tags         admin
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        admin_password formData string true "Admin or advertiser secret"
// @Success      302  {string}  string "Redirect to the account page"
// @Failure      400  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Failure      429  {object}  map[string]interface{}
// @Router       /admin_login [post]
func (h *AdminHandler) AdminLogin(c *gin.Context) {
	password := strings.TrimSpace(c.PostForm("admin_password"))

	privilege, err := h.identityUseCase.Escalate(c.Request.Context(), currentSession(c), password)
	switch {
	case err == nil && privilege == usecase.PrivilegeAdvertiser:
		finish(c, http.StatusOK, flashSuccess, msgAdvertiserLogin, accountPath, nil)
	case err == nil:
		finish(c, http.StatusOK, flashSuccess, msgAdminGranted, accountPath, nil)
	case errors.Is(err, entity.ErrEmptyPassword):
		fail(c, http.StatusBadRequest, msgPasswordRequired, accountPath)
	case errors.Is(err, entity.ErrInvalidPassword):
		h.logger.Warn("Rejected privilege escalation from %s", c.ClientIP())
		fail(c, http.StatusForbidden, msgPasswordWrong, accountPath)
	case errors.Is(err, entity.ErrAdvertiserMissing):
		fail(c, http.StatusInternalServerError, msgAdvertiserMissing, accountPath)
	case errors.Is(err, entity.ErrNoIdentity):
		fail(c, http.StatusUnauthorized, msgNoIdentity, accountPath)
	default:
		h.logger.Error("Privilege escalation failed: %v", err)
		fail(c, http.StatusInternalServerError, msgLoginFailed, accountPath)
	}
}

// UpdateAdminUsername godoc
// @Summary      Rename the admin user
// @Tags         admin
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        new_username formData string true "New username (max 50)"
// @Success      302  {string}  string "Redirect to the account page"
// @Failure      400  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Router       /update_admin_username [post]
func (h *AdminHandler) UpdateAdminUsername(c *gin.Context) {
	err := h.identityUseCase.RenameAdmin(c.Request.Context(), currentSession(c), c.PostForm("new_username"))

	var verr *usecase.ValidationError
	switch {
	case err == nil:
		finish(c, http.StatusOK, flashSuccess, msgUsernameUpdated, accountPath, nil)
	case errors.Is(err, entity.ErrForbidden):
		fail(c, http.StatusForbidden, msgAdminRequired, accountPath)
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, strings.Join(validationMessages(verr), " "), accountPath)
	case errors.Is(err, entity.ErrUsernameTaken):
		fail(c, http.StatusConflict, msgUsernameTaken, accountPath)
	case errors.Is(err, entity.ErrNotFound):
		fail(c, http.StatusNotFound, msgUserNotFound, accountPath)
	default:
		h.logger.Error("Failed to rename admin: %v", err)
		fail(c, http.StatusInternalServerError, msgUsernameFailed, accountPath)
	}
}

// PrivilegedLogout godoc
// @Summary      Drop privileges
// @Description  Ends advertiser impersonation, or clears the admin flags of the current user
// @Tags         admin
// @Produce      json
// @Success      302  {string}  string "Redirect to the account page"
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /privileged_logout [post]
func (h *AdminHandler) PrivilegedLogout(c *gin.Context) {
	restored, err := h.identityUseCase.Deescalate(c.Request.Context(), currentSession(c))
	switch {
	case err == nil && restored:
		finish(c, http.StatusOK, flashSuccess, msgRestoredPrevious, accountPath, nil)
	case err == nil:
		finish(c, http.StatusOK, flashSuccess, msgPrivilegesDropped, accountPath, nil)
	case errors.Is(err, entity.ErrForbidden):
		fail(c, http.StatusForbidden, msgAdminRequired, accountPath)
	case errors.Is(err, entity.ErrPreviousMissing):
		fail(c, http.StatusNotFound, msgPreviousMissing, accountPath)
	default:
		h.logger.Error("Privileged logout failed: %v", err)
		fail(c, http.StatusInternalServerError, msgLogoutFailed, accountPath)
	}
}

// AdminDeletePost godoc
// @Summary      Delete any post
// @Tags         admin
// @Produce      json
// @Param        id path int true "Post ID"
// @Success      302  {string}  string "Redirect back"
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin_delete_post/{id} [post]
func (h *AdminHandler) AdminDeletePost(c *gin.Context) {
	back := backTo(c, "/")

	postID, err := parseID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, msgPostNotFound, back)
		return
	}

	err = h.postUseCase.AdminDeletePost(c.Request.Context(), postID, currentIdentity(c))
	switch {
	case err == nil:
		finish(c, http.StatusOK, flashSuccess, msgPostDeleted, back, nil)
	case errors.Is(err, entity.ErrForbidden):
		fail(c, http.StatusForbidden, msgAdminRequired, back)
	case errors.Is(err, entity.ErrNotFound):
		fail(c, http.StatusNotFound, msgPostNotFound, back)
	default:
		h.logger.Error("Failed to delete post %d: %v", postID, err)
		fail(c, http.StatusInternalServerError, msgDeleteFailed, back)
	}
}
