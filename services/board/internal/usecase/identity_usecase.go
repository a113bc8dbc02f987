package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"kuchikomi/pkg/config"
	"kuchikomi/pkg/logger"
	"kuchikomi/pkg/metrics"
	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/repo/persistent"

	"golang.org/x/crypto/bcrypt"
)

const (
	desktopCreateAttempts = 3
	mobileCreateAttempts  = 5
	usernameAttempts      = 5
	maxUsernameLength     = 50
)

var (
	probePaths       = []string{"/health", "/uptimerobot"}
	mobileUserAgents = []string{"Mobile", "Android", "iPhone", "iPad", "iPod"}
)

// Privilege is what a successful escalation granted.
type Privilege int

const (
	PrivilegeAdmin Privilege = iota + 1
	PrivilegeAdvertiser
)

type IdentityUseCase interface {
	IsUptimeProbe(path, userAgent string) bool
	Resolve(ctx context.Context, session *entity.Session, userAgent string) (entity.Identity, error)
	Escalate(ctx context.Context, session *entity.Session, password string) (Privilege, error)
	Deescalate(ctx context.Context, session *entity.Session) (bool, error)
	RenameAdmin(ctx context.Context, session *entity.Session, newUsername string) error
	EnsureAdvertiser(ctx context.Context) error
}

type identityUseCase struct {
	userRepo          persistent.UserRepository
	catalog           config.Catalog
	adminPasswordHash string
	adPasswordHash    string
	advertiserID      int64
	retryBackoff      time.Duration
	logger            *logger.Logger
}

func NewIdentityUseCase(userRepo persistent.UserRepository, cfg *config.Config, logger *logger.Logger) IdentityUseCase {
	return &identityUseCase{
		userRepo:          userRepo,
		catalog:           cfg.Catalog,
		adminPasswordHash: cfg.AdminPasswordHash,
		adPasswordHash:    cfg.AdPasswordHash,
		advertiserID:      cfg.AdvertiserUserID,
		retryBackoff:      100 * time.Millisecond,
		logger:            logger,
	}
}

func (uc *identityUseCase) IsUptimeProbe(path, userAgent string) bool {
	if strings.Contains(userAgent, "UptimeRobot") {
		return true
	}
	for _, p := range probePaths {
		if path == p {
			return true
		}
	}
	return false
}

// Resolve binds the session to a user row, creating a pseudo-user when the
// session has none or references a deleted user.
func (uc *identityUseCase) Resolve(ctx context.Context, session *entity.Session, userAgent string) (entity.Identity, error) {
	current := session.Identity()
	if current.Present() {
		user, err := uc.userRepo.GetByID(ctx, current.UserID)
		switch {
		case err == nil:
			if user.Username != current.Username {
				current.Username = user.Username
				session.SetIdentity(current)
			}
			return current, nil
		case errors.Is(err, entity.ErrNotFound):
			uc.logger.Warn("Session user %d no longer exists, starting a new session", current.UserID)
			session.Reset()
		default:
			return entity.Identity{}, fmt.Errorf("failed to load session user: %w", err)
		}
	}

	user, err := uc.createPseudoUser(ctx, createAttempts(userAgent))
	if err != nil {
		metrics.PseudoUsers.WithLabelValues("failed").Inc()
		return entity.Identity{}, fmt.Errorf("%w: %v", entity.ErrNoIdentity, err)
	}
	metrics.PseudoUsers.WithLabelValues("created").Inc()

	identity := entity.Identity{UserID: user.ID, Username: user.Username}
	session.SetIdentity(identity)
	return identity, nil
}

func (uc *identityUseCase) createPseudoUser(ctx context.Context, attempts int) (*entity.User, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		username, err := uc.freeUsername(ctx)
		if err == nil {
			user := &entity.User{Username: username}
			if err = uc.userRepo.Create(ctx, user); err == nil {
				return user, nil
			}
		}

		lastErr = err
		uc.logger.Warn("Pseudo-user creation attempt %d/%d failed: %v", attempt, attempts, err)
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(uc.retryBackoff * time.Duration(attempt)):
		}
	}
	return nil, fmt.Errorf("failed to create pseudo-user after %d attempts: %w", attempts, lastErr)
}

func (uc *identityUseCase) freeUsername(ctx context.Context) (string, error) {
	for attempt := 0; attempt < usernameAttempts; attempt++ {
		username := uc.randomUsername()
		if attempt > 0 {
			username = fmt.Sprintf("%s %d", username, 1000+rand.IntN(9000))
		}

		taken, err := uc.userRepo.UsernameExists(ctx, username, 0)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !taken {
			return username, nil
		}
	}
	return "", entity.ErrUsernameTaken
}

func (uc *identityUseCase) randomUsername() string {
	first := uc.catalog.FirstNames[rand.IntN(len(uc.catalog.FirstNames))]
	last := uc.catalog.LastNames[rand.IntN(len(uc.catalog.LastNames))]
	return first + " " + last
}

func createAttempts(userAgent string) int {
	for _, marker := range mobileUserAgents {
		if strings.Contains(userAgent, marker) {
			return mobileCreateAttempts
		}
	}
	return desktopCreateAttempts
}

// Escalate checks password against the advertiser secret first, then the
// admin secret.
func (uc *identityUseCase) Escalate(ctx context.Context, session *entity.Session, password string) (Privilege, error) {
	if password == "" {
		return 0, entity.ErrEmptyPassword
	}

	switch {
	case passwordMatches(uc.adPasswordHash, password):
		advertiser, err := uc.userRepo.GetByID(ctx, uc.advertiserID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return 0, entity.ErrAdvertiserMissing
			}
			return 0, fmt.Errorf("failed to load advertiser account: %w", err)
		}
		session.Impersonate(entity.Identity{
			UserID:       advertiser.ID,
			Username:     advertiser.Username,
			IsAdmin:      true,
			IsAdvertiser: true,
		})
		uc.logger.Info("Session switched to advertiser account %d", advertiser.ID)
		return PrivilegeAdvertiser, nil

	case passwordMatches(uc.adminPasswordHash, password):
		current := session.Identity()
		if !current.Present() {
			return 0, entity.ErrNoIdentity
		}
		// the advertiser row keeps its stored flags
		if current.UserID != uc.advertiserID {
			if err := uc.userRepo.UpdatePrivileges(ctx, current.UserID, true, false); err != nil {
				return 0, fmt.Errorf("failed to grant admin: %w", err)
			}
		}
		current.IsAdmin = true
		current.IsAdvertiser = false
		session.SetIdentity(current)
		uc.logger.Info("Admin granted to user %d", current.UserID)
		return PrivilegeAdmin, nil

	default:
		return 0, entity.ErrInvalidPassword
	}
}

func passwordMatches(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Deescalate returns true when it ended an impersonation and false when it
// dropped admin flags from the current user. An advertiser session with no
// stashed user is cleared instead.
func (uc *identityUseCase) Deescalate(ctx context.Context, session *entity.Session) (bool, error) {
	current := session.Identity()
	if !current.IsAdmin {
		return false, entity.ErrForbidden
	}

	if previous, ok := session.Impersonating(); ok {
		user, err := uc.userRepo.GetByID(ctx, previous.UserID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return false, entity.ErrPreviousMissing
			}
			return false, fmt.Errorf("failed to load previous user: %w", err)
		}
		previous.Username = user.Username
		session.Restore(previous)
		return true, nil
	}

	// advertiser session with nobody to return to: start over as a new user
	if current.UserID == uc.advertiserID {
		session.Reset()
		return false, nil
	}

	if err := uc.userRepo.UpdatePrivileges(ctx, current.UserID, false, false); err != nil && !errors.Is(err, entity.ErrNotFound) {
		return false, fmt.Errorf("failed to revoke privileges: %w", err)
	}
	current.IsAdmin = false
	current.IsAdvertiser = false
	session.SetIdentity(current)
	return false, nil
}

func (uc *identityUseCase) RenameAdmin(ctx context.Context, session *entity.Session, newUsername string) error {
	current := session.Identity()
	if !current.IsAdmin {
		return entity.ErrForbidden
	}

	newUsername = strings.TrimSpace(newUsername)
	verr := &ValidationError{}
	verr.require("username", newUsername)
	verr.maxLength("username", newUsername, maxUsernameLength)
	if err := verr.orNil(); err != nil {
		return err
	}

	taken, err := uc.userRepo.UsernameExists(ctx, newUsername, current.UserID)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return entity.ErrUsernameTaken
	}

	if err := uc.userRepo.UpdateUsername(ctx, current.UserID, newUsername); err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}

	current.Username = newUsername
	session.SetIdentity(current)
	return nil
}

func (uc *identityUseCase) EnsureAdvertiser(ctx context.Context) error {
	if err := uc.userRepo.EnsureAdvertiser(ctx, uc.advertiserID, entity.AdvertiserUsername); err != nil {
		return fmt.Errorf("failed to ensure advertiser account: %w", err)
	}
	return nil
}
