package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"kuchikomi/services/board/internal/entity"

	"github.com/gin-gonic/gin"
)

func isAJAX(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

// renderPage answers a page document: data plus the current user and the
// pending flashes, which are consumed.
func renderPage(c *gin.Context, status int, data gin.H) {
	identity := currentIdentity(c)
	data["user"] = gin.H{
		"id":            identity.UserID,
		"username":      identity.Username,
		"is_admin":      identity.IsAdmin,
		"is_advertiser": identity.IsAdvertiser,
	}
	data["flashes"] = currentSession(c).PopFlashes()
	c.JSON(status, data)
}

// finish ends a form submission: a JSON body for AJAX callers, otherwise
// a flash message and a redirect to location.
func finish(c *gin.Context, status int, category, message, location string, extra gin.H) {
	if isAJAX(c) {
		body := gin.H{"status": "ok", "message": message}
		if category == flashError {
			body["status"] = "error"
		}
		for k, v := range extra {
			body[k] = v
		}
		c.JSON(status, body)
		return
	}

	currentSession(c).AddFlash(category, message)
	c.Redirect(http.StatusFound, location)
}

func fail(c *gin.Context, status int, message, location string) {
	finish(c, status, flashError, message, location, nil)
}

// abortJSON answers an error document for non-form endpoints.
func abortJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": "error", "message": message})
}

// backTo returns the referring page when it is on this host.
func backTo(c *gin.Context, fallback string) string {
	ref, err := url.Parse(c.GetHeader("Referer"))
	if err != nil || (ref.Host != "" && ref.Host != c.Request.Host) {
		return fallback
	}
	if !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") || strings.HasPrefix(ref.Path, "/\\") {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}

func postIDParam(c *gin.Context) (int64, bool) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		abortJSON(c, http.StatusNotFound, msgPostNotFound)
		return 0, false
	}
	return id, true
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func emptyIfNil(posts []*entity.PostSummary) []*entity.PostSummary {
	if posts == nil {
		return []*entity.PostSummary{}
	}
	return posts
}
