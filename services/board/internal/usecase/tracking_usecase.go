package usecase

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"kuchikomi/pkg/besteffort"
	"kuchikomi/pkg/config"
	"kuchikomi/pkg/logger"
	"kuchikomi/pkg/metrics"
	"kuchikomi/pkg/queue"
	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/repo/persistent"
)

const (
	mapsSearchURL     = "https://www.google.com/maps/search/?api=1&query="
	maxMapsURLLength  = 300
	adminPostsLimit   = 200
	csvTimeLayout     = "2006-01-02T15:04:05.999999"
	utf8BOM           = "\xEF\xBB\xBF"
	publishTimeout    = 5 * time.Second
	couponCodeLength  = 8
	eventKindMapClick = "map_click"
	eventKindCoupon   = "coupon_view"
)

// mapsQueryEscaper turns QueryEscape output into path-style quoting:
// spaces as %20 and "/" left as is.
var mapsQueryEscaper = strings.NewReplacer("+", "%20", "%2F", "/")

// AdEventPublisher mirrors tracking events to a message broker.
type AdEventPublisher interface {
	PublishAdEvent(ctx context.Context, event queue.AdEvent) error
}

// AdminPostInput holds the fields submitted on the admin edit form. Nil
// fields were not submitted and stay unchanged.
type AdminPostInput struct {
	StoreName     *string
	Area          *string
	Caption       *string
	PriceRange    *string
	School        *string
	GoogleMapsURL string
}

type TrackingUseCase interface {
	Redirect(ctx context.Context, postID int64) (string, error)
	Coupon(ctx context.Context, postID int64) (*entity.Post, string, error)
	CanExport(identity entity.Identity) bool
	ExportMapClicks(ctx context.Context) ([]byte, error)
	ExportCouponEvents(ctx context.Context) ([]byte, error)
	AdminPosts(ctx context.Context) ([]*entity.Post, error)
	AdminPost(ctx context.Context, postID int64) (*entity.Post, error)
	AdminUpdatePost(ctx context.Context, postID int64, input AdminPostInput) (*entity.Post, error)
	WaitForPublishes(ctx context.Context) error
}

type trackingUseCase struct {
	postRepo     persistent.PostRepository
	trackingRepo persistent.TrackingRepository
	publisher    AdEventPublisher
	couponSecret []byte
	advertiserID int64
	mapDomains   map[string]bool
	publishes    sync.WaitGroup
	logger       *logger.Logger
}

// NewTrackingUseCase builds the ad tracking use case. publisher may be nil.
func NewTrackingUseCase(
	postRepo persistent.PostRepository,
	trackingRepo persistent.TrackingRepository,
	publisher AdEventPublisher,
	cfg *config.Config,
	logger *logger.Logger,
) TrackingUseCase {
	domains := make(map[string]bool, len(cfg.Catalog.MapDomains))
	for _, d := range cfg.Catalog.MapDomains {
		domains[strings.ToLower(d)] = true
	}

	return &trackingUseCase{
		postRepo:     postRepo,
		trackingRepo: trackingRepo,
		publisher:    publisher,
		couponSecret: []byte(cfg.CouponSecret),
		advertiserID: cfg.AdvertiserUserID,
		mapDomains:   domains,
		logger:       logger,
	}
}

// IsSponsored reports whether post is owned by the advertiser account or
// carries a map link.
func (uc *trackingUseCase) IsSponsored(post *entity.Post) bool {
	return post.UserID == uc.advertiserID || post.GoogleMapsURL != ""
}

// Redirect returns the map destination of a post, recording a click when
// the post is sponsored.
func (uc *trackingUseCase) Redirect(ctx context.Context, postID int64) (string, error) {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return "", err
	}

	if uc.IsSponsored(post) {
		result := besteffort.Run("record map click", func() error {
			return uc.trackingRepo.CreateMapClick(ctx, post.ID)
		})
		result.Log(uc.logger)
		uc.recordEvent(ctx, queue.AdEvent{Kind: eventKindMapClick, PostID: post.ID}, result)
	}

	return uc.MapsURL(post), nil
}

// Coupon returns the post and its code. Posts that are not sponsored
// have no coupon.
func (uc *trackingUseCase) Coupon(ctx context.Context, postID int64) (*entity.Post, string, error) {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, "", err
	}
	if !uc.IsSponsored(post) {
		return nil, "", entity.ErrNotSponsored
	}

	code := uc.CouponCode(post)
	result := besteffort.Run("record coupon event", func() error {
		return uc.trackingRepo.CreateCouponEvent(ctx, post.ID, code)
	})
	result.Log(uc.logger)
	uc.recordEvent(ctx, queue.AdEvent{Kind: eventKindCoupon, PostID: post.ID, Code: code}, result)

	return post, code, nil
}

func (uc *trackingUseCase) recordEvent(ctx context.Context, event queue.AdEvent, result besteffort.Result) {
	outcome := "recorded"
	if !result.OK() {
		outcome = "failed"
	}
	metrics.AdEvents.WithLabelValues(event.Kind, outcome).Inc()

	if uc.publisher == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()
	uc.publishes.Add(1)
	go func() {
		defer uc.publishes.Done()
		uc.publishEvent(context.WithoutCancel(ctx), event)
	}()
}

// WaitForPublishes blocks until in-flight ad events are handed to the
// queue or ctx is done. Call it before closing the queue client.
func (uc *trackingUseCase) WaitForPublishes(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.publishes.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (uc *trackingUseCase) publishEvent(ctx context.Context, event queue.AdEvent) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	besteffort.Run("publish "+event.Kind, func() error {
		return uc.publisher.PublishAdEvent(ctx, event)
	}).Log(uc.logger)
}

// CouponCode is the first 8 hex digits, uppercased, of
// HMAC-SHA256(secret, "<store_name>|<id>").
func (uc *trackingUseCase) CouponCode(post *entity.Post) string {
	mac := hmac.New(sha256.New, uc.couponSecret)
	mac.Write([]byte(post.StoreName + "|" + strconv.FormatInt(post.ID, 10)))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil))[:couponCodeLength])
}

// MapsURL prefers a stored link on an allowed domain and falls back to a
// maps search for the store name and area.
func (uc *trackingUseCase) MapsURL(post *entity.Post) string {
	if post.GoogleMapsURL != "" && uc.allowedMapsURL(post.GoogleMapsURL) {
		return post.GoogleMapsURL
	}

	query := strings.TrimSpace(post.StoreName + " " + post.Area)
	return mapsSearchURL + mapsQueryEscaper.Replace(url.QueryEscape(query))
}

func (uc *trackingUseCase) allowedMapsURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && uc.mapDomains[strings.ToLower(u.Host)]
}

// CanExport grants admin sessions and the advertiser account.
func (uc *trackingUseCase) CanExport(identity entity.Identity) bool {
	return identity.IsAdmin || (identity.Present() && identity.UserID == uc.advertiserID)
}

func (uc *trackingUseCase) ExportMapClicks(ctx context.Context) ([]byte, error) {
	rows, err := uc.trackingRepo.MapClickRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load map clicks: %w", err)
	}

	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			strconv.FormatInt(r.ID, 10),
			r.CreatedAt.UTC().Format(csvTimeLayout),
			strconv.FormatInt(r.PostID, 10),
			r.StoreName,
			r.Area,
		}
	}
	return encodeCSV([]string{"id", "created_at", "post_id", "store_name", "area"}, records)
}

func (uc *trackingUseCase) ExportCouponEvents(ctx context.Context) ([]byte, error) {
	rows, err := uc.trackingRepo.CouponEventRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon events: %w", err)
	}

	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			strconv.FormatInt(r.ID, 10),
			r.CreatedAt.UTC().Format(csvTimeLayout),
			strconv.FormatInt(r.PostID, 10),
			r.Code,
			r.StoreName,
			r.Area,
		}
	}
	return encodeCSV([]string{"id", "created_at", "post_id", "code", "store_name", "area"}, records)
}

// encodeCSV writes a UTF-8 BOM so spreadsheet apps detect the encoding.
func encodeCSV(header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (uc *trackingUseCase) AdminPosts(ctx context.Context) ([]*entity.Post, error) {
	posts, err := uc.postRepo.Recent(ctx, adminPostsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	return posts, nil
}

func (uc *trackingUseCase) AdminPost(ctx context.Context, postID int64) (*entity.Post, error) {
	return uc.postRepo.GetByID(ctx, postID)
}

// AdminUpdatePost applies submitted text fields as-is. The map link is
// kept only when it points to an allowed maps domain and is cleared
// otherwise.
func (uc *trackingUseCase) AdminUpdatePost(ctx context.Context, postID int64, input AdminPostInput) (*entity.Post, error) {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	assign(&post.StoreName, input.StoreName)
	assign(&post.Area, input.Area)
	assign(&post.Caption, input.Caption)
	assign(&post.PriceRange, input.PriceRange)
	assign(&post.School, input.School)

	link := strings.TrimSpace(input.GoogleMapsURL)
	if link != "" && uc.allowedMapsURL(link) {
		post.GoogleMapsURL = truncateRunes(link, maxMapsURLLength)
	} else {
		post.GoogleMapsURL = ""
	}

	if err := uc.postRepo.UpdateDetails(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	uc.logger.Info("Post %d edited by admin", post.ID)
	return post, nil
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
