package http

import (
	"net/http"

	"kuchikomi/pkg/logger"
	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/usecase"

	"github.com/gin-gonic/gin"
)

type RankingHandler struct {
	rankingUseCase usecase.RankingUseCase
	postUseCase    usecase.PostUseCase
	logger         *logger.Logger
}

func NewRankingHandler(rankingUseCase usecase.RankingUseCase, postUseCase usecase.PostUseCase, logger *logger.Logger) *RankingHandler {
	return &RankingHandler{
		rankingUseCase: rankingUseCase,
		postUseCase:    postUseCase,
		logger:         logger,
	}
}

// Ranking godoc
// @Summary      Most liked posts
// @Description  Top 20 posts by likes, overall or within one school
// @Tags         ranking
// @Produce      json
// @Param        type query string false "overall or school" Enums(overall, school)
// @Param        school query string false "School tag for type=school"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /ranking [get]
func (h *RankingHandler) Ranking(c *gin.Context) {
	rankingType := c.DefaultQuery("type", usecase.RankingOverall)
	school := c.Query("school")

	ranking, err := h.rankingUseCase.Ranking(c.Request.Context(), rankingType, school)
	if err != nil {
		h.logger.Error("Failed to load ranking: %v", err)
		currentSession(c).AddFlash(flashError, msgRankingFailed)
		renderPage(c, http.StatusInternalServerError, gin.H{
			"ranking": &usecase.Ranking{
				Type:    rankingType,
				School:  school,
				Title:   "🏆 ランキング",
				Posts:   []*entity.PostSummary{},
				Schools: []entity.SchoolCount{},
			},
			"liked_post_ids": []int64{},
		})
		return
	}

	ranking.Posts = emptyIfNil(ranking.Posts)
	if ranking.Schools == nil {
		ranking.Schools = []entity.SchoolCount{}
	}
	renderPage(c, http.StatusOK, gin.H{
		"ranking":        ranking,
		"liked_post_ids": likedPostIDs(c, h.postUseCase, h.logger),
	})
}

// Advertisements godoc
// @Summary      Sponsored posts
// @Description  Posts of the advertiser account by likes
// @Tags         ranking
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /advertisements [get]
func (h *RankingHandler) Advertisements(c *gin.Context) {
	posts, err := h.rankingUseCase.Advertisements(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load advertisements: %v", err)
		currentSession(c).AddFlash(flashError, msgAdvertisementsFail)
		renderPage(c, http.StatusInternalServerError, gin.H{"posts": []*entity.PostSummary{}, "liked_post_ids": []int64{}})
		return
	}

	renderPage(c, http.StatusOK, gin.H{
		"posts":          emptyIfNil(posts),
		"liked_post_ids": likedPostIDs(c, h.postUseCase, h.logger),
	})
}
