package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"kuchikomi/pkg/besteffort"
	"kuchikomi/pkg/config"
	"kuchikomi/pkg/logger"
	"kuchikomi/pkg/storage"
	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/repo/persistent"
)

const (
	MaxImageBytes = 10 * 1024 * 1024

	maxStoreNameLength  = 50
	maxCaptionLength    = 500
	maxAreaLength       = 100
	maxSchoolLength     = 100
	maxPriceRangeLength = 20
)

var allowedExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

var imageContentTypes = map[string]string{"jpeg": "image/jpeg", "png": "image/png"}

type CreatePostInput struct {
	UserID     int64
	Caption    string
	PriceRange string
	Area       string
	StoreName  string
	School     string
	Image      *multipart.FileHeader
}

type PostUseCase interface {
	CreatePost(ctx context.Context, input CreatePostInput) (*entity.Post, error)
	ListPosts(ctx context.Context, filter entity.PostFilter) ([]*entity.PostSummary, error)
	LikedPostIDs(ctx context.Context, userID int64) ([]int64, error)
	DeletePost(ctx context.Context, postID int64, actor entity.Identity) error
	AdminDeletePost(ctx context.Context, postID int64, actor entity.Identity) error
	PriceOptions() []string
	SchoolOptions(ctx context.Context) ([]string, error)
}

type postUseCase struct {
	postRepo        persistent.PostRepository
	likeRepo        persistent.LikeRepository
	store           storage.BlobStore
	catalog         config.Catalog
	captionRequired bool
	now             func() time.Time
	logger          *logger.Logger
}

func NewPostUseCase(
	postRepo persistent.PostRepository,
	likeRepo persistent.LikeRepository,
	store storage.BlobStore,
	cfg *config.Config,
	logger *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo:        postRepo,
		likeRepo:        likeRepo,
		store:           store,
		catalog:         cfg.Catalog,
		captionRequired: cfg.CaptionRequired,
		now:             time.Now,
		logger:          logger,
	}
}

func (uc *postUseCase) CreatePost(ctx context.Context, input CreatePostInput) (*entity.Post, error) {
	if input.UserID == 0 {
		return nil, entity.ErrNoIdentity
	}

	post := &entity.Post{
		UserID:     input.UserID,
		Caption:    strings.TrimSpace(input.Caption),
		PriceRange: strings.TrimSpace(input.PriceRange),
		Area:       strings.TrimSpace(input.Area),
		StoreName:  strings.TrimSpace(input.StoreName),
		School:     strings.TrimSpace(input.School),
	}

	if err := uc.validateFields(post, input.Image); err != nil {
		return nil, err
	}

	data, contentType, err := readImage(input.Image)
	if err != nil {
		return nil, err
	}

	key := uc.imageKey(input.Image.Filename)
	ref, err := uc.store.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrUpload, err)
	}
	post.ImagePath = ref

	if err := uc.postRepo.Create(ctx, post); err != nil {
		besteffort.Run("delete orphaned image", func() error {
			return uc.store.Delete(ctx, ref)
		}).Log(uc.logger)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	uc.logger.Info("Post %d created by user %d", post.ID, post.UserID)
	return post, nil
}

// validateFields reports missing fields alone, then length and extension
// problems together.
func (uc *postUseCase) validateFields(post *entity.Post, image *multipart.FileHeader) error {
	required := &ValidationError{}
	if image == nil || image.Filename == "" {
		required.add(ProblemRequired, "image", 0)
	}
	if uc.captionRequired {
		required.require("caption", post.Caption)
	}
	required.require("price_range", post.PriceRange)
	required.require("area", post.Area)
	required.require("store_name", post.StoreName)
	if err := required.orNil(); err != nil {
		return err
	}

	verr := &ValidationError{}
	verr.maxLength("store_name", post.StoreName, maxStoreNameLength)
	verr.maxLength("caption", post.Caption, maxCaptionLength)
	verr.maxLength("area", post.Area, maxAreaLength)
	verr.maxLength("school", post.School, maxSchoolLength)
	verr.maxLength("price_range", post.PriceRange, maxPriceRangeLength)
	if !allowedExtensions[strings.ToLower(filepath.Ext(image.Filename))] {
		verr.add(ProblemExtension, "image", 0)
	}
	if image.Size > MaxImageBytes {
		verr.add(ProblemTooLarge, "image", MaxImageBytes)
	}
	return verr.orNil()
}

// readImage loads the upload and checks that it decodes as JPEG or PNG.
func readImage(header *multipart.FileHeader) ([]byte, string, error) {
	src, err := header.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, "", &ValidationError{Problems: []Problem{{Kind: ProblemTooLarge, Field: "image", Max: MaxImageBytes}}}
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	contentType, ok := imageContentTypes[format]
	if err != nil || !ok {
		return nil, "", &ValidationError{Problems: []Problem{{Kind: ProblemNotImage, Field: "image"}}}
	}
	return data, contentType, nil
}

func (uc *postUseCase) imageKey(filename string) string {
	now := uc.now()
	stamp := fmt.Sprintf("%s%06d", now.Format("20060102150405"), now.Nanosecond()/1000)
	return fmt.Sprintf("posts/%s_%s", stamp, sanitizeFilename(filename))
}

// sanitizeFilename keeps ASCII letters, digits, dots, dashes and
// underscores of the name; whitespace becomes an underscore. The
// extension is lowercased.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := filepath.Ext(name)
	stem := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		case r == ' ' || r == '\t':
			return '_'
		default:
			return -1
		}
	}, strings.TrimSuffix(name, ext))

	stem = strings.Trim(stem, "._")
	if stem == "" {
		stem = "image"
	}
	return stem + strings.ToLower(ext)
}

func (uc *postUseCase) ListPosts(ctx context.Context, filter entity.PostFilter) ([]*entity.PostSummary, error) {
	filter.Area = strings.TrimSpace(filter.Area)
	filter.StoreName = strings.TrimSpace(filter.StoreName)
	filter.PriceRange = strings.TrimSpace(filter.PriceRange)
	filter.School = strings.TrimSpace(filter.School)

	posts, err := uc.postRepo.List(ctx, filter, entity.OrderNewest, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (uc *postUseCase) LikedPostIDs(ctx context.Context, userID int64) ([]int64, error) {
	if userID == 0 {
		return []int64{}, nil
	}
	ids, err := uc.likeRepo.LikedPostIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load liked posts: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// DeletePost removes a post owned by actor.
func (uc *postUseCase) DeletePost(ctx context.Context, postID int64, actor entity.Identity) error {
	if !actor.Present() {
		return entity.ErrNoIdentity
	}

	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actor.UserID {
		return entity.ErrForbidden
	}
	return uc.deletePost(ctx, post)
}

// AdminDeletePost removes any post for a session holding the admin flag.
func (uc *postUseCase) AdminDeletePost(ctx context.Context, postID int64, actor entity.Identity) error {
	if !actor.IsAdmin {
		return entity.ErrForbidden
	}

	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	return uc.deletePost(ctx, post)
}

func (uc *postUseCase) deletePost(ctx context.Context, post *entity.Post) error {
	if err := uc.postRepo.DeleteWithLikes(ctx, post.ID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if post.ImagePath != "" {
		besteffort.Run("delete post image", func() error {
			return uc.store.Delete(ctx, post.ImagePath)
		}).Log(uc.logger)
	}

	uc.logger.Info("Post %d deleted", post.ID)
	return nil
}

func (uc *postUseCase) PriceOptions() []string {
	return uc.catalog.PriceOptions
}

// SchoolOptions lists the tags in use by frequency, followed by the
// remaining catalog schools.
func (uc *postUseCase) SchoolOptions(ctx context.Context) ([]string, error) {
	counts, err := uc.postRepo.SchoolCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count schools: %w", err)
	}

	options := make([]string, 0, len(counts)+len(uc.catalog.Schools))
	used := make(map[string]bool, len(counts))
	for _, c := range counts {
		options = append(options, c.School)
		used[c.School] = true
	}
	for _, school := range uc.catalog.Schools {
		if !used[school] {
			options = append(options, school)
		}
	}
	return options, nil
}
