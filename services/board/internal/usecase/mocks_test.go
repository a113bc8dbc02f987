package usecase

import (
	"context"

	"kuchikomi/pkg/queue"
	"kuchikomi/pkg/storage"
	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/repo/persistent"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error) {
	args := m.Called(ctx, username, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdatePrivileges(ctx context.Context, id int64, isAdmin, isAdvertiser bool) error {
	args := m.Called(ctx, id, isAdmin, isAdvertiser)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	args := m.Called(ctx, id, username)
	return args.Error(0)
}

func (m *MockUserRepository) EnsureAdvertiser(ctx context.Context, id int64, username string) error {
	args := m.Called(ctx, id, username)
	return args.Error(0)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *entity.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id int64) (*entity.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, filter entity.PostFilter, order entity.PostOrder, limit int) ([]*entity.PostSummary, error) {
	args := m.Called(ctx, filter, order, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PostSummary), args.Error(1)
}

func (m *MockPostRepository) Recent(ctx context.Context, limit int) ([]*entity.Post, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostRepository) UpdateDetails(ctx context.Context, post *entity.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) DeleteWithLikes(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) SchoolCounts(ctx context.Context) ([]entity.SchoolCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.SchoolCount), args.Error(1)
}

type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) Toggle(ctx context.Context, postID, userID int64) (entity.LikeState, error) {
	args := m.Called(ctx, postID, userID)
	return args.Get(0).(entity.LikeState), args.Error(1)
}

func (m *MockLikeRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLikeRepository) LikedPostIDs(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type MockTrackingRepository struct {
	mock.Mock
}

func (m *MockTrackingRepository) CreateMapClick(ctx context.Context, postID int64) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

func (m *MockTrackingRepository) CreateCouponEvent(ctx context.Context, postID int64, code string) error {
	args := m.Called(ctx, postID, code)
	return args.Error(0)
}

func (m *MockTrackingRepository) MapClickRows(ctx context.Context) ([]entity.MapClickRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.MapClickRow), args.Error(1)
}

func (m *MockTrackingRepository) CouponEventRows(ctx context.Context) ([]entity.CouponEventRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CouponEventRow), args.Error(1)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishAdEvent(ctx context.Context, event queue.AdEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var (
	_ persistent.UserRepository     = (*MockUserRepository)(nil)
	_ persistent.PostRepository     = (*MockPostRepository)(nil)
	_ persistent.LikeRepository     = (*MockLikeRepository)(nil)
	_ persistent.TrackingRepository = (*MockTrackingRepository)(nil)
	_ storage.BlobStore             = (*MockBlobStore)(nil)
	_ AdEventPublisher              = (*MockPublisher)(nil)
)
