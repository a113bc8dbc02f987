package http

import (
	"time"

	"kuchikomi/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Post     *PostHandler
	Admin    *AdminHandler
	Like     *LikeHandler
	Ranking  *RankingHandler
	Tracking *TrackingHandler
	Health   *HealthHandler
}

// RegisterRoutes mounts the board routes on r. identity must run before
// every handler that reads the session.
func RegisterRoutes(r gin.IRouter, h Handlers, identity gin.HandlerFunc, redisClient *redis.Client) {
	r.GET("/health", h.Health.Health)
	r.GET("/uptimerobot", h.Health.Health)

	board := r.Group("/")
	board.Use(identity)
	{
		board.GET("/", h.Post.Feed)
		board.GET("/search", h.Post.Search)
		board.POST("/search", h.Post.Search)
		board.GET("/post", h.Post.PostForm)
		board.POST("/post", middleware.RateLimitMiddleware(redisClient, 5, time.Minute), h.Post.CreatePost)
		board.GET("/account", h.Post.Account)
		board.POST("/delete_post/:id", h.Post.DeletePost)

		board.POST("/admin_login", middleware.RateLimitMiddleware(redisClient, 10, time.Minute), h.Admin.AdminLogin)
		board.POST("/update_admin_username", h.Admin.UpdateAdminUsername)
		board.POST("/privileged_logout", h.Admin.PrivilegedLogout)
		board.POST("/admin_delete_post/:id", h.Admin.AdminDeletePost)

		board.POST("/like/:id", h.Like.ToggleLike)

		board.GET("/ranking", h.Ranking.Ranking)
		board.GET("/advertisements", h.Ranking.Advertisements)

		board.GET("/go/:id", h.Tracking.Go)
		board.GET("/coupon/:id", h.Tracking.Coupon)
	}

	admin := board.Group("/admin")
	admin.Use(h.Tracking.RequireExportRights())
	{
		admin.GET("/posts", h.Tracking.AdminPosts)
		admin.GET("/posts/:id/edit", h.Tracking.AdminEditPost)
		admin.POST("/posts/:id/edit", h.Tracking.AdminUpdatePost)
		admin.GET("/export/map_clicks.csv", h.Tracking.ExportMapClicks)
		admin.GET("/export/coupon_events.csv", h.Tracking.ExportCouponEvents)
	}
}
