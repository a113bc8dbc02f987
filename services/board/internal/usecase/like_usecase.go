package usecase

import (
	"context"
	"fmt"

	"kuchikomi/pkg/logger"
	"kuchikomi/pkg/metrics"
	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/repo/persistent"
)

type LikeUseCase interface {
	ToggleLike(ctx context.Context, postID, userID int64) (entity.LikeState, error)
}

type likeUseCase struct {
	postRepo persistent.PostRepository
	likeRepo persistent.LikeRepository
	logger   *logger.Logger
}

func NewLikeUseCase(postRepo persistent.PostRepository, likeRepo persistent.LikeRepository, logger *logger.Logger) LikeUseCase {
	return &likeUseCase{
		postRepo: postRepo,
		likeRepo: likeRepo,
		logger:   logger,
	}
}

func (uc *likeUseCase) ToggleLike(ctx context.Context, postID, userID int64) (entity.LikeState, error) {
	if userID == 0 {
		return entity.LikeState{}, entity.ErrNoIdentity
	}

	if _, err := uc.postRepo.GetByID(ctx, postID); err != nil {
		return entity.LikeState{}, err
	}

	state, err := uc.likeRepo.Toggle(ctx, postID, userID)
	if err != nil {
		return entity.LikeState{}, fmt.Errorf("failed to toggle like: %w", err)
	}

	label := "unliked"
	if state.Liked {
		label = "liked"
	}
	metrics.LikeToggles.WithLabelValues(label).Inc()
	return state, nil
}
