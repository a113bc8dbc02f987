package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"time"

	"kuchikomi/pkg/config"
	"kuchikomi/pkg/database"
	"kuchikomi/pkg/logger"
	"kuchikomi/pkg/storage"
	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/repo/persistent"

	"github.com/brianvoe/gofakeit/v6"
)

var storeSuffixes = []string{"食堂", "ラーメン", "カフェ", "ほうとう", "焼肉", "寿司", "ベーカリー"}

var areas = []string{"甲府駅前", "韮崎", "北杜", "甲斐", "笛吹", "富士吉田", "南アルプス"}

func main() {
	var (
		users    = flag.Int("users", 8, "number of pseudo-users to create")
		postsPer = flag.Int("posts", 3, "posts per user")
		adPosts  = flag.Int("ads", 3, "sponsored posts for the advertiser account")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	ctx := context.Background()
	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Error("Failed to create blob store: %v", err)
		panic(err)
	}

	s := &seeder{
		cfg:      cfg,
		log:      log,
		store:    store,
		userRepo: persistent.NewUserRepository(db),
		postRepo: persistent.NewPostRepository(db),
		likeRepo: persistent.NewLikeRepository(db),
	}

	if err := s.run(ctx, *users, *postsPer, *adPosts); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

type seeder struct {
	cfg      *config.Config
	log      *logger.Logger
	store    storage.BlobStore
	userRepo persistent.UserRepository
	postRepo persistent.PostRepository
	likeRepo persistent.LikeRepository
}

func (s *seeder) run(ctx context.Context, users, postsPer, adPosts int) error {
	gofakeit.Seed(time.Now().UnixNano())

	if err := s.userRepo.EnsureAdvertiser(ctx, s.cfg.AdvertiserUserID, entity.AdvertiserUsername); err != nil {
		return fmt.Errorf("failed to ensure advertiser: %w", err)
	}

	userIDs := make([]int64, 0, users)
	for i := 0; i < users; i++ {
		user, err := s.createUser(ctx)
		if err != nil {
			s.log.Error("Failed to create user %d: %v", i+1, err)
			continue
		}
		userIDs = append(userIDs, user.ID)
		s.log.Info("Created user: %s", user.Username)
	}

	var postIDs []int64
	for _, userID := range userIDs {
		for i := 0; i < postsPer; i++ {
			post, err := s.createPost(ctx, userID, "")
			if err != nil {
				s.log.Error("Failed to create post for user %d: %v", userID, err)
				continue
			}
			postIDs = append(postIDs, post.ID)
		}
	}

	for i := 0; i < adPosts; i++ {
		store := gofakeit.RandomString(storeSuffixes)
		mapsURL := "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(store)
		post, err := s.createPost(ctx, s.cfg.AdvertiserUserID, mapsURL)
		if err != nil {
			s.log.Error("Failed to create sponsored post: %v", err)
			continue
		}
		postIDs = append(postIDs, post.ID)
	}

	likes := 0
	for _, userID := range userIDs {
		for _, postID := range postIDs {
			if !gofakeit.Bool() {
				continue
			}
			if _, err := s.likeRepo.Toggle(ctx, postID, userID); err != nil {
				s.log.Error("Failed to like post %d as user %d: %v", postID, userID, err)
				continue
			}
			likes++
		}
	}

	s.log.Info("Created %d users, %d posts and %d likes", len(userIDs), len(postIDs), likes)
	return nil
}

func (s *seeder) createUser(ctx context.Context) (*entity.User, error) {
	catalog := s.cfg.Catalog
	for attempt := 0; attempt < 5; attempt++ {
		user := &entity.User{
			Username: fmt.Sprintf("%s %s%d",
				gofakeit.RandomString(catalog.FirstNames),
				gofakeit.RandomString(catalog.LastNames),
				gofakeit.Number(1000, 9999),
			),
			Gender: gofakeit.RandomString(catalog.Genders),
		}
		err := s.userRepo.Create(ctx, user)
		if errors.Is(err, entity.ErrUsernameTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return user, nil
	}
	return nil, entity.ErrUsernameTaken
}

func (s *seeder) createPost(ctx context.Context, userID int64, mapsURL string) (*entity.Post, error) {
	data, err := placeholderPNG()
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("posts/seed_%d_%d.png", userID, time.Now().UnixNano())
	ref, err := s.store.Upload(ctx, key, data, "image/png")
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	catalog := s.cfg.Catalog
	post := &entity.Post{
		UserID:        userID,
		ImagePath:     ref,
		Caption:       gofakeit.Sentence(8),
		PriceRange:    gofakeit.RandomString(catalog.PriceOptions),
		Area:          gofakeit.RandomString(areas),
		StoreName:     gofakeit.LastName() + gofakeit.RandomString(storeSuffixes),
		GoogleMapsURL: mapsURL,
	}
	if gofakeit.Bool() {
		post.School = gofakeit.RandomString(catalog.Schools)
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if delErr := s.store.Delete(ctx, ref); delErr != nil {
			s.log.Warn("Failed to delete orphaned image %s: %v", ref, delErr)
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// placeholderPNG renders a small solid tile in a random color.
func placeholderPNG() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	fill := color.RGBA{
		R: uint8(gofakeit.Number(0, 255)),
		G: uint8(gofakeit.Number(0, 255)),
		B: uint8(gofakeit.Number(0, 255)),
		A: 255,
	}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
