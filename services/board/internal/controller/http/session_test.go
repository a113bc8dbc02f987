package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kuchikomi/pkg/jwt"
	"kuchikomi/services/board/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testAdvertiserID = 1

func testSessionStore() *SessionStore {
	return NewSessionStore(jwt.NewService("test-session-secret", SessionTTL), false, testAdvertiserID, testLogger())
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == SessionCookieName {
			return cookie
		}
	}
	return nil
}

func requestWith(t *testing.T, store *SessionStore, payload sessionPayload) *http.Request {
	t.Helper()
	token, err := store.tokens.Sign(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	return req
}

func TestSessionStore_SaveAndLoad(t *testing.T) {
	store := testSessionStore()

	session := entity.NewSession(entity.Identity{UserID: 7, Username: "Alex Smith", IsAdmin: true}, nil, nil)
	session.AddFlash(flashSuccess, msgAdminGranted)

	w := httptest.NewRecorder()
	store.Save(w, session)

	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Greater(t, cookie.MaxAge, int((365 * 24 * time.Hour).Seconds()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded := store.Load(req)

	assert.Equal(t, session.Identity(), loaded.Identity())
	assert.Equal(t, []entity.Flash{{Category: flashSuccess, Message: msgAdminGranted}}, loaded.Flashes())
	assert.False(t, loaded.Dirty())
}

func TestSessionStore_SaveSkipsCleanSession(t *testing.T) {
	store := testSessionStore()

	w := httptest.NewRecorder()
	store.Save(w, entity.NewSession(entity.Identity{UserID: 7}, nil, nil))

	assert.Nil(t, sessionCookie(t, w))
}

func TestSessionStore_LoadRejectsTamperedCookie(t *testing.T) {
	store := testSessionStore()

	other := NewSessionStore(jwt.NewService("another-secret", SessionTTL), false, testAdvertiserID, testLogger())
	req := requestWith(t, other, sessionPayload{Identity: entity.Identity{UserID: 7, IsAdmin: true}})

	loaded := store.Load(req)
	assert.False(t, loaded.Identity().Present())
}

func TestSessionStore_LoadImpersonation(t *testing.T) {
	store := testSessionStore()
	previous := entity.Identity{UserID: 5, Username: "Ben Jones"}

	t.Run("kept while acting as the advertiser", func(t *testing.T) {
		req := requestWith(t, store, sessionPayload{
			Identity: entity.Identity{UserID: testAdvertiserID, IsAdmin: true, IsAdvertiser: true},
			Previous: &previous,
		})

		stashed, ok := store.Load(req).Impersonating()
		assert.True(t, ok)
		assert.Equal(t, previous, stashed)
	})

	t.Run("ignored for any other user", func(t *testing.T) {
		req := requestWith(t, store, sessionPayload{
			Identity: entity.Identity{UserID: 9},
			Previous: &previous,
		})

		_, ok := store.Load(req).Impersonating()
		assert.False(t, ok)
	})
}

func TestIdentityMiddleware_CreatesAndReusesIdentity(t *testing.T) {
	store := testSessionStore()
	identityUseCase := new(MockIdentityUseCase)
	created := entity.Identity{UserID: 7, Username: "Alex Smith"}

	identityUseCase.On("IsUptimeProbe", "/", mock.Anything).Return(false)
	identityUseCase.On("Resolve", mock.Anything, mock.MatchedBy(func(s *entity.Session) bool {
		return !s.Identity().Present()
	}), mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Session).SetIdentity(created)
	}).Return(created, nil).Once()
	identityUseCase.On("Resolve", mock.Anything, mock.MatchedBy(func(s *entity.Session) bool {
		return s.Identity().UserID == 7
	}), mock.Anything).Return(created, nil).Once()

	router := setupTestRouter()
	router.Use(IdentityMiddleware(store, identityUseCase, testLogger()))
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, currentIdentity(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":7`)
	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":7`)
	assert.Nil(t, sessionCookie(t, w), "unchanged session is not rewritten")
	identityUseCase.AssertExpectations(t)
}

func TestIdentityMiddleware_FlashSurvivesRedirect(t *testing.T) {
	store := testSessionStore()
	identityUseCase := new(MockIdentityUseCase)
	identity := entity.Identity{UserID: 7}

	identityUseCase.On("IsUptimeProbe", mock.Anything, mock.Anything).Return(false)
	identityUseCase.On("Resolve", mock.Anything, mock.Anything, mock.Anything).Return(identity, nil)

	router := setupTestRouter()
	router.Use(IdentityMiddleware(store, identityUseCase, testLogger()))
	router.POST("/like/:id", func(c *gin.Context) {
		finish(c, http.StatusOK, flashSuccess, msgLiked, "/", nil)
	})
	router.GET("/", func(c *gin.Context) {
		renderPage(c, http.StatusOK, gin.H{})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/like/1", nil))
	require.Equal(t, http.StatusFound, w.Code)
	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), msgLiked)

	// the flash was consumed, so the cookie is rewritten without it
	cleared := sessionCookie(t, w)
	require.NotNil(t, cleared)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cleared)
	assert.Empty(t, store.Load(req).Flashes())
}

func TestIdentityMiddleware_UptimeProbeIsNotBound(t *testing.T) {
	store := testSessionStore()
	identityUseCase := new(MockIdentityUseCase)

	identityUseCase.On("IsUptimeProbe", "/", "UptimeRobot/2.0").Return(true)

	router := setupTestRouter()
	router.Use(IdentityMiddleware(store, identityUseCase, testLogger()))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "UptimeRobot/2.0")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, sessionCookie(t, w))
	identityUseCase.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestIdentityMiddleware_ResolveFailure(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantFlash string
	}{
		{name: "creation failed", err: entity.ErrNoIdentity, wantFlash: msgUserCreateFailed},
		{name: "lookup failed", err: errors.New("db down"), wantFlash: msgUserLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testSessionStore()
			identityUseCase := new(MockIdentityUseCase)

			identityUseCase.On("IsUptimeProbe", mock.Anything, mock.Anything).Return(false)
			identityUseCase.On("Resolve", mock.Anything, mock.Anything, mock.Anything).Return(entity.Identity{}, tt.err)

			router := setupTestRouter()
			router.Use(IdentityMiddleware(store, identityUseCase, testLogger()))
			router.GET("/", func(c *gin.Context) {
				_, bound := c.Get("user")
				assert.False(t, bound)
				renderPage(c, http.StatusOK, gin.H{})
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Contains(t, w.Body.String(), tt.wantFlash)
		})
	}
}
