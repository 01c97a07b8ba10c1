package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SumireDoi/LocaConne/internal/extract"
	"github.com/SumireDoi/LocaConne/internal/model"
	"github.com/SumireDoi/LocaConne/internal/repository"
	"github.com/SumireDoi/LocaConne/internal/storage"
	"github.com/SumireDoi/LocaConne/internal/vision"
	"github.com/SumireDoi/LocaConne/pkg/logger"
)

// maxLandmarkAttempts bounds the detect/perturb loop. The system this
// replaces documented the bound as 4 but ran 10; 10 is the contract.
const maxLandmarkAttempts = 10

var ErrPostNotFound = errors.New("post not found")

// ImagePerturber produces a re-encoded variant of a stored image, or reports
// that it could not.
type ImagePerturber interface {
	Perturb(ctx context.Context, imageURL string) (string, bool)
}

// ImageUpload is an incoming image payload.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SubmitInput is one post submission.
type SubmitInput struct {
	Username string
	Text     string
	Image    *ImageUpload
}

// PostDetail is the per-post read: the post plus whatever enrichment fields
// exist for it.
type PostDetail struct {
	Post             model.Post `json:"post"`
	Description      *string    `json:"description"`
	Coordinate       *string    `json:"coordinate"`
	WikipediaSummary *string    `json:"wikipedia_summary"`
}

type PostService interface {
	Submit(ctx context.Context, in SubmitInput) (uint, error)
	Timeline(ctx context.Context) ([]repository.TimelineItem, error)
	Detail(ctx context.Context, postID uint) (*PostDetail, error)
}

type postService struct {
	posts     repository.PostRepository
	details   repository.LocationDetailRepository
	extractor *extract.Extractor
	detector  vision.Detector
	perturber ImagePerturber
	store     storage.ObjectStorage
	enricher  *Enricher
}

func NewPostService(
	posts repository.PostRepository,
	details repository.LocationDetailRepository,
	extractor *extract.Extractor,
	detector vision.Detector,
	perturber ImagePerturber,
	store storage.ObjectStorage,
	enricher *Enricher,
) PostService {
	return &postService{
		posts:     posts,
		details:   details,
		extractor: extractor,
		detector:  detector,
		perturber: perturber,
		store:     store,
		enricher:  enricher,
	}
}

// Submit runs the whole pipeline for one post: upload, landmark loop, text
// extraction, persistence, then best-effort enrichment. Only the image upload
// and the Post insert can fail the submission; everything downstream degrades
// silently, a post being always better than no post.
func (s *postService) Submit(ctx context.Context, in SubmitInput) (uint, error) {
	originalURL := ""
	if in.Image != nil {
		url, err := s.uploadImage(ctx, in.Image)
		if err != nil {
			return 0, err
		}
		originalURL = url
	}

	landmark := s.detectLandmark(ctx, originalURL)
	candidates := s.extractor.Extract(in.Text)

	post := &model.Post{Username: in.Username, Text: in.Text, ImageURL: originalURL}
	if err := s.posts.Create(ctx, post); err != nil {
		return 0, err
	}

	if selected, ok := SelectLocation(candidates, landmark); ok {
		s.saveLocationDetail(ctx, post.ID, selected)
	} else {
		logger.Info("no location signal for post", zap.Uint("post_id", post.ID))
	}
	return post.ID, nil
}

func (s *postService) uploadImage(ctx context.Context, img *ImageUpload) (string, error) {
	// Name by filename+timestamp so identical uploads at different moments
	// stay distinct objects.
	stamp := time.Now().Format("2006-01-02 15:04:05")
	name := fmt.Sprintf("%x", sha256.Sum256([]byte(img.Filename+"_"+stamp)))
	return s.store.Write(ctx, name, img.ContentType, img.Data)
}

// detectLandmark drives the detector with a bounded, strictly sequential
// retry budget. A miss perturbs the image for the next attempt; a failed
// perturbation leaves an empty reference whose detection trivially misses,
// so the loop still runs its full budget but stops doing real work.
func (s *postService) detectLandmark(ctx context.Context, imageURL string) string {
	if imageURL == "" {
		return ""
	}
	current := imageURL
	for attempt := 0; attempt < maxLandmarkAttempts; attempt++ {
		if name, ok := s.detector.Detect(ctx, current); ok {
			return name
		}
		if next, ok := s.perturber.Perturb(ctx, current); ok {
			current = next
		} else {
			current = ""
		}
	}
	return ""
}

// saveLocationDetail enriches the selected place and persists the result.
// Failures here never propagate: the post is already committed and a missing
// detail row is a valid outcome.
func (s *postService) saveLocationDetail(ctx context.Context, postID uint, place string) {
	loc := s.enricher.Enrich(ctx, place)
	if !loc.Resolved() {
		logger.Info("location did not resolve", zap.Uint("post_id", postID), zap.String("place", place))
		return
	}
	detail := &model.LocationDetail{
		PostID:           postID,
		Location:         *loc.Label,
		Description:      loc.Description,
		Coordinate:       loc.Coordinate,
		WikipediaSummary: loc.Summary,
	}
	if err := s.details.Create(ctx, detail); err != nil {
		logger.Error("saving location detail failed", zap.Uint("post_id", postID), zap.Error(err))
		return
	}
	logger.Info("location detail saved", zap.Uint("post_id", postID), zap.String("location", detail.Location))
}

func (s *postService) Timeline(ctx context.Context) ([]repository.TimelineItem, error) {
	return s.posts.ListTimeline(ctx)
}

func (s *postService) Detail(ctx context.Context, postID uint) (*PostDetail, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	out := &PostDetail{Post: *post}
	detail, err := s.details.GetByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if detail != nil {
		out.Description = detail.Description
		out.Coordinate = detail.Coordinate
		out.WikipediaSummary = detail.WikipediaSummary
	}
	return out, nil
}
