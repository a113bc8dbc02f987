package usecase

import (
	"context"
	"fmt"

	"kuchikomi/pkg/config"
	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/repo/persistent"
)

const rankingSize = 20

const (
	RankingOverall = "overall"
	RankingSchool  = "school"
)

type Ranking struct {
	Type    string                `json:"type"`
	School  string                `json:"school"`
	Title   string                `json:"title"`
	Posts   []*entity.PostSummary `json:"posts"`
	Schools []entity.SchoolCount  `json:"schools"`
}

type RankingUseCase interface {
	Ranking(ctx context.Context, rankingType, school string) (*Ranking, error)
	Advertisements(ctx context.Context) ([]*entity.PostSummary, error)
}

type rankingUseCase struct {
	postRepo     persistent.PostRepository
	advertiserID int64
}

func NewRankingUseCase(postRepo persistent.PostRepository, cfg *config.Config) RankingUseCase {
	return &rankingUseCase{
		postRepo:     postRepo,
		advertiserID: cfg.AdvertiserUserID,
	}
}

// Ranking returns the most liked posts overall, or within one school
// when rankingType is "school" and school is set.
func (uc *rankingUseCase) Ranking(ctx context.Context, rankingType, school string) (*Ranking, error) {
	schools, err := uc.postRepo.SchoolCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count schools: %w", err)
	}

	result := &Ranking{Type: RankingOverall, Title: "🏆 総合ランキング", Schools: schools}
	filter := entity.PostFilter{}
	if rankingType == RankingSchool && school != "" {
		result.Type = RankingSchool
		result.School = school
		result.Title = fmt.Sprintf("🏆 %s ランキング", school)
		filter.School = school
	}

	result.Posts, err = uc.postRepo.List(ctx, filter, entity.OrderMostLiked, rankingSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking: %w", err)
	}
	return result, nil
}

func (uc *rankingUseCase) Advertisements(ctx context.Context) ([]*entity.PostSummary, error) {
	posts, err := uc.postRepo.List(ctx, entity.PostFilter{UserID: uc.advertiserID}, entity.OrderMostLiked, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load advertisements: %w", err)
	}
	return posts, nil
}
