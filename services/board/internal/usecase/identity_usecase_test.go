package usecase

import (
	"context"
	"errors"
	"testing"

	"kuchikomi/services/board/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestIdentityUseCase(t *testing.T, userRepo *MockUserRepository) *identityUseCase {
	t.Helper()

	cfg := testConfig()
	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	adHash, err := bcrypt.GenerateFromPassword([]byte("ad-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg.AdminPasswordHash = string(adminHash)
	cfg.AdPasswordHash = string(adHash)

	uc := NewIdentityUseCase(userRepo, cfg, testLogger()).(*identityUseCase)
	uc.retryBackoff = 0
	return uc
}

func TestIsUptimeProbe(t *testing.T) {
	uc := newTestIdentityUseCase(t, new(MockUserRepository))

	assert.True(t, uc.IsUptimeProbe("/", "Mozilla/5.0+(compatible; UptimeRobot/2.0)"))
	assert.True(t, uc.IsUptimeProbe("/health", "curl/8.0"))
	assert.True(t, uc.IsUptimeProbe("/uptimerobot", ""))
	assert.False(t, uc.IsUptimeProbe("/", "Mozilla/5.0"))
}

func TestResolve_ExistingUserRefreshesName(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	session := entity.NewSession(entity.Identity{UserID: 5, Username: "Old Name", IsAdmin: true}, nil, nil)

	userRepo.On("GetByID", mock.Anything, int64(5)).Return(&entity.User{ID: 5, Username: "New Name"}, nil)

	identity, err := uc.Resolve(context.Background(), session, "Mozilla/5.0")

	require.NoError(t, err)
	assert.Equal(t, entity.Identity{UserID: 5, Username: "New Name", IsAdmin: true}, identity)
	assert.Equal(t, "New Name", session.Identity().Username)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestResolve_MissingUserStartsOver(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	session := entity.NewSession(entity.Identity{UserID: 5, Username: "Gone", IsAdmin: true}, nil, nil)

	userRepo.On("GetByID", mock.Anything, int64(5)).Return(nil, entity.ErrNotFound)
	userRepo.On("UsernameExists", mock.Anything, mock.AnythingOfType("string"), int64(0)).Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.User).ID = 42
	}).Return(nil)

	identity, err := uc.Resolve(context.Background(), session, "Mozilla/5.0")

	require.NoError(t, err)
	assert.Equal(t, int64(42), identity.UserID)
	assert.False(t, identity.IsAdmin)
	assert.Regexp(t, `^[A-Za-z]+ [A-Za-z]+$`, identity.Username)
	assert.Equal(t, identity, session.Identity())
	assert.True(t, session.Dirty())
}

func TestResolve_LookupErrorKeepsSession(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	session := entity.NewSession(entity.Identity{UserID: 5, Username: "Alex Smith"}, nil, nil)

	userRepo.On("GetByID", mock.Anything, int64(5)).Return(nil, errors.New("connection refused"))

	identity, err := uc.Resolve(context.Background(), session, "Mozilla/5.0")

	assert.Error(t, err)
	assert.False(t, identity.Present())
	assert.Equal(t, int64(5), session.Identity().UserID)
	assert.False(t, session.Dirty())
}

func TestResolve_NameCollisionAddsSuffix(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	session := entity.NewSession(entity.Identity{}, nil, nil)

	userRepo.On("UsernameExists", mock.Anything, mock.AnythingOfType("string"), int64(0)).Return(true, nil).Once()
	userRepo.On("UsernameExists", mock.Anything, mock.AnythingOfType("string"), int64(0)).Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)

	identity, err := uc.Resolve(context.Background(), session, "Mozilla/5.0")

	require.NoError(t, err)
	assert.Regexp(t, `^[A-Za-z]+ [A-Za-z]+ [1-9][0-9]{3}$`, identity.Username)
}

func TestResolve_RetriesByDevice(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		attempts  int
	}{
		{name: "desktop", userAgent: "Mozilla/5.0 (Windows NT 10.0)", attempts: 3},
		{name: "mobile", userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148", attempts: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			uc := newTestIdentityUseCase(t, userRepo)
			session := entity.NewSession(entity.Identity{}, nil, nil)

			userRepo.On("UsernameExists", mock.Anything, mock.AnythingOfType("string"), int64(0)).Return(false, nil)
			userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(errors.New("database is locked"))

			identity, err := uc.Resolve(context.Background(), session, tt.userAgent)

			assert.ErrorIs(t, err, entity.ErrNoIdentity)
			assert.False(t, identity.Present())
			assert.False(t, session.Identity().Present())
			userRepo.AssertNumberOfCalls(t, "Create", tt.attempts)
		})
	}
}

func TestResolve_RecoversOnRetry(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	session := entity.NewSession(entity.Identity{}, nil, nil)

	userRepo.On("UsernameExists", mock.Anything, mock.AnythingOfType("string"), int64(0)).Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(errors.New("timeout")).Once()
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.User).ID = 7
	}).Return(nil)

	identity, err := uc.Resolve(context.Background(), session, "Mozilla/5.0")

	require.NoError(t, err)
	assert.Equal(t, int64(7), identity.UserID)
	userRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestEscalate_Advertiser(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	session := entity.NewSession(entity.Identity{UserID: 5, Username: "Alex Smith"}, nil, nil)

	userRepo.On("GetByID", mock.Anything, int64(1)).Return(&entity.User{ID: 1, Username: entity.AdvertiserUsername}, nil)

	privilege, err := uc.Escalate(context.Background(), session, "ad-secret")

	require.NoError(t, err)
	assert.Equal(t, PrivilegeAdvertiser, privilege)
	assert.Equal(t, entity.Identity{UserID: 1, Username: entity.AdvertiserUsername, IsAdmin: true, IsAdvertiser: true}, session.Identity())
	previous, ok := session.Impersonating()
	assert.True(t, ok)
	assert.Equal(t, entity.Identity{UserID: 5, Username: "Alex Smith"}, previous)
}

func TestEscalate_AdvertiserWinsWhenBothMatch(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	uc.adminPasswordHash = uc.adPasswordHash
	session := entity.NewSession(entity.Identity{UserID: 5}, nil, nil)

	userRepo.On("GetByID", mock.Anything, int64(1)).Return(&entity.User{ID: 1, Username: entity.AdvertiserUsername}, nil)

	privilege, err := uc.Escalate(context.Background(), session, "ad-secret")

	require.NoError(t, err)
	assert.Equal(t, PrivilegeAdvertiser, privilege)
	userRepo.AssertNotCalled(t, "UpdatePrivileges", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEscalate_AdvertiserMissing(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	session := entity.NewSession(entity.Identity{UserID: 5}, nil, nil)

	userRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, entity.ErrNotFound)

	_, err := uc.Escalate(context.Background(), session, "ad-secret")

	assert.ErrorIs(t, err, entity.ErrAdvertiserMissing)
	assert.Equal(t, int64(5), session.Identity().UserID)
}

func TestEscalate_Admin(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	session := entity.NewSession(entity.Identity{UserID: 5, Username: "Alex Smith"}, nil, nil)

	userRepo.On("UpdatePrivileges", mock.Anything, int64(5), true, false).Return(nil)

	privilege, err := uc.Escalate(context.Background(), session, "admin-secret")

	require.NoError(t, err)
	assert.Equal(t, PrivilegeAdmin, privilege)
	assert.True(t, session.Identity().IsAdmin)
	assert.False(t, session.Identity().IsAdvertiser)
	_, impersonating := session.Impersonating()
	assert.False(t, impersonating)
	userRepo.AssertExpectations(t)
}

func TestEscalate_AdminWhileAdvertiserKeepsStoredFlags(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	session := entity.NewSession(
		entity.Identity{UserID: 1, Username: entity.AdvertiserUsername, IsAdmin: true, IsAdvertiser: true},
		entity.ImpersonatingSession{Previous: entity.Identity{UserID: 5}},
		nil,
	)

	privilege, err := uc.Escalate(context.Background(), session, "admin-secret")

	require.NoError(t, err)
	assert.Equal(t, PrivilegeAdmin, privilege)
	assert.True(t, session.Identity().IsAdmin)
	assert.False(t, session.Identity().IsAdvertiser)
	userRepo.AssertNotCalled(t, "UpdatePrivileges", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEscalate_Rejected(t *testing.T) {
	uc := newTestIdentityUseCase(t, new(MockUserRepository))
	session := entity.NewSession(entity.Identity{UserID: 5}, nil, nil)

	_, err := uc.Escalate(context.Background(), session, "")
	assert.ErrorIs(t, err, entity.ErrEmptyPassword)

	_, err = uc.Escalate(context.Background(), session, "wrong")
	assert.ErrorIs(t, err, entity.ErrInvalidPassword)
	assert.False(t, session.Dirty())
}

func TestDeescalate_RestoresPrevious(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	previous := entity.Identity{UserID: 5, Username: "Alex Smith", IsAdmin: true}
	session := entity.NewSession(
		entity.Identity{UserID: 1, Username: entity.AdvertiserUsername, IsAdmin: true, IsAdvertiser: true},
		entity.ImpersonatingSession{Previous: previous},
		nil,
	)

	userRepo.On("GetByID", mock.Anything, int64(5)).Return(&entity.User{ID: 5, Username: "Alex Smith"}, nil)

	restored, err := uc.Deescalate(context.Background(), session)

	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, previous, session.Identity())
	_, impersonating := session.Impersonating()
	assert.False(t, impersonating)
}

func TestDeescalate_PreviousMissing(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	session := entity.NewSession(
		entity.Identity{UserID: 1, IsAdmin: true, IsAdvertiser: true},
		entity.ImpersonatingSession{Previous: entity.Identity{UserID: 5}},
		nil,
	)

	userRepo.On("GetByID", mock.Anything, int64(5)).Return(nil, entity.ErrNotFound)

	_, err := uc.Deescalate(context.Background(), session)

	assert.ErrorIs(t, err, entity.ErrPreviousMissing)
	assert.Equal(t, int64(1), session.Identity().UserID)
}

func TestDeescalate_ClearsFlags(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	session := entity.NewSession(entity.Identity{UserID: 5, IsAdmin: true}, nil, nil)

	userRepo.On("UpdatePrivileges", mock.Anything, int64(5), false, false).Return(nil)

	restored, err := uc.Deescalate(context.Background(), session)

	require.NoError(t, err)
	assert.False(t, restored)
	assert.False(t, session.Identity().IsAdmin)
	userRepo.AssertExpectations(t)
}

func TestDeescalate_AdvertiserWithoutPreviousResets(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	session := entity.NewSession(entity.Identity{}, nil, nil)

	userRepo.On("GetByID", mock.Anything, int64(1)).Return(&entity.User{ID: 1, Username: entity.AdvertiserUsername}, nil)

	_, err := uc.Escalate(context.Background(), session, "ad-secret")
	require.NoError(t, err)
	_, impersonating := session.Impersonating()
	require.False(t, impersonating)

	restored, err := uc.Deescalate(context.Background(), session)

	require.NoError(t, err)
	assert.False(t, restored)
	assert.False(t, session.Identity().Present())
	userRepo.AssertNotCalled(t, "UpdatePrivileges", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeescalate_RequiresAdmin(t *testing.T) {
	uc := newTestIdentityUseCase(t, new(MockUserRepository))
	session := entity.NewSession(entity.Identity{UserID: 5}, nil, nil)

	_, err := uc.Deescalate(context.Background(), session)
	assert.ErrorIs(t, err, entity.ErrForbidden)
}

func TestRenameAdmin(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	session := entity.NewSession(entity.Identity{UserID: 5, Username: "Alex Smith", IsAdmin: true}, nil, nil)

	userRepo.On("UsernameExists", mock.Anything, "運営", int64(5)).Return(false, nil)
	userRepo.On("UpdateUsername", mock.Anything, int64(5), "運営").Return(nil)

	err := uc.RenameAdmin(context.Background(), session, "  運営  ")

	require.NoError(t, err)
	assert.Equal(t, "運営", session.Identity().Username)
	assert.True(t, session.Identity().IsAdmin)
}

func TestRenameAdmin_Rejected(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)
	admin := entity.NewSession(entity.Identity{UserID: 5, IsAdmin: true}, nil, nil)

	err := uc.RenameAdmin(context.Background(), entity.NewSession(entity.Identity{UserID: 5}, nil, nil), "name")
	assert.ErrorIs(t, err, entity.ErrForbidden)

	err = uc.RenameAdmin(context.Background(), admin, "   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ProblemRequired, verr.Problems[0].Kind)

	long := ""
	for i := 0; i < 51; i++ {
		long += "あ"
	}
	err = uc.RenameAdmin(context.Background(), admin, long)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, Problem{Kind: ProblemTooLong, Field: "username", Max: 50}, verr.Problems[0])

	userRepo.On("UsernameExists", mock.Anything, "Taken Name", int64(5)).Return(true, nil)
	err = uc.RenameAdmin(context.Background(), admin, "Taken Name")
	assert.ErrorIs(t, err, entity.ErrUsernameTaken)
	userRepo.AssertNotCalled(t, "UpdateUsername", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureAdvertiser(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc := newTestIdentityUseCase(t, userRepo)

	userRepo.On("EnsureAdvertiser", mock.Anything, int64(1), entity.AdvertiserUsername).Return(nil)

	require.NoError(t, uc.EnsureAdvertiser(context.Background()))
	userRepo.AssertExpectations(t)
}
