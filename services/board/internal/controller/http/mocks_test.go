package http

import (
	"context"
	"io"

	"kuchikomi/pkg/logger"
	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

type MockIdentityUseCase struct {
	mock.Mock
}

func (m *MockIdentityUseCase) IsUptimeProbe(path, userAgent string) bool {
	args := m.Called(path, userAgent)
	return args.Bool(0)
}

func (m *MockIdentityUseCase) Resolve(ctx context.Context, session *entity.Session, userAgent string) (entity.Identity, error) {
	args := m.Called(ctx, session, userAgent)
	return args.Get(0).(entity.Identity), args.Error(1)
}

func (m *MockIdentityUseCase) Escalate(ctx context.Context, session *entity.Session, password string) (usecase.Privilege, error) {
	args := m.Called(ctx, session, password)
	return args.Get(0).(usecase.Privilege), args.Error(1)
}

func (m *MockIdentityUseCase) Deescalate(ctx context.Context, session *entity.Session) (bool, error) {
	args := m.Called(ctx, session)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdentityUseCase) RenameAdmin(ctx context.Context, session *entity.Session, newUsername string) error {
	args := m.Called(ctx, session, newUsername)
	return args.Error(0)
}

func (m *MockIdentityUseCase) EnsureAdvertiser(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) CreatePost(ctx context.Context, input usecase.CreatePostInput) (*entity.Post, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) ListPosts(ctx context.Context, filter entity.PostFilter) ([]*entity.PostSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PostSummary), args.Error(1)
}

func (m *MockPostUseCase) LikedPostIDs(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockPostUseCase) DeletePost(ctx context.Context, postID int64, actor entity.Identity) error {
	args := m.Called(ctx, postID, actor)
	return args.Error(0)
}

func (m *MockPostUseCase) AdminDeletePost(ctx context.Context, postID int64, actor entity.Identity) error {
	args := m.Called(ctx, postID, actor)
	return args.Error(0)
}

func (m *MockPostUseCase) PriceOptions() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockPostUseCase) SchoolOptions(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockLikeUseCase struct {
	mock.Mock
}

func (m *MockLikeUseCase) ToggleLike(ctx context.Context, postID, userID int64) (entity.LikeState, error) {
	args := m.Called(ctx, postID, userID)
	return args.Get(0).(entity.LikeState), args.Error(1)
}

type MockRankingUseCase struct {
	mock.Mock
}

func (m *MockRankingUseCase) Ranking(ctx context.Context, rankingType, school string) (*usecase.Ranking, error) {
	args := m.Called(ctx, rankingType, school)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Ranking), args.Error(1)
}

func (m *MockRankingUseCase) Advertisements(ctx context.Context) ([]*entity.PostSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PostSummary), args.Error(1)
}

type MockTrackingUseCase struct {
	mock.Mock
}

func (m *MockTrackingUseCase) Redirect(ctx context.Context, postID int64) (string, error) {
	args := m.Called(ctx, postID)
	return args.String(0), args.Error(1)
}

func (m *MockTrackingUseCase) Coupon(ctx context.Context, postID int64) (*entity.Post, string, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entity.Post), args.String(1), args.Error(2)
}

func (m *MockTrackingUseCase) CanExport(identity entity.Identity) bool {
	args := m.Called(identity)
	return args.Bool(0)
}

func (m *MockTrackingUseCase) ExportMapClicks(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockTrackingUseCase) ExportCouponEvents(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockTrackingUseCase) AdminPosts(ctx context.Context) ([]*entity.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockTrackingUseCase) AdminPost(ctx context.Context, postID int64) (*entity.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockTrackingUseCase) AdminUpdatePost(ctx context.Context, postID int64, input usecase.AdminPostInput) (*entity.Post, error) {
	args := m.Called(ctx, postID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockTrackingUseCase) WaitForPublishes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var (
	_ usecase.IdentityUseCase = (*MockIdentityUseCase)(nil)
	_ usecase.PostUseCase     = (*MockPostUseCase)(nil)
	_ usecase.LikeUseCase     = (*MockLikeUseCase)(nil)
	_ usecase.RankingUseCase  = (*MockRankingUseCase)(nil)
	_ usecase.TrackingUseCase = (*MockTrackingUseCase)(nil)
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, io.Discard)
}

// withIdentity binds identity and a matching session the way
// IdentityMiddleware does.
func withIdentity(identity entity.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionKey, entity.NewSession(identity, nil, nil))
		if identity.Present() {
			c.Set("user", identity)
			c.Set("user_id", identity.UserID)
		}
		c.Next()
	}
}
