package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"civic-backend/internal/models"
	"civic-backend/internal/repository"
	"civic-backend/internal/storage"
)

const (
	MaxMediaFiles = 5
	MaxVoiceFiles = 1

	discardTimeout = 10 * time.Second
)

var mediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/jpg":  true,
	"video/mp4":  true,
}

var voiceTypes = map[string]bool{
	"audio/mpeg": true,
	"audio/wav":  true,
}

// ErrPostInvalid matches every validation failure of a new post or comment.
var ErrPostInvalid = errors.New("invalid post")

type postError struct{ msg string }

func (e *postError) Error() string { return e.msg }
func (e *postError) Unwrap() error { return ErrPostInvalid }

func invalidPost(format string, args ...any) error {
	return &postError{msg: fmt.Sprintf(format, args...)}
}

// Upload is one file of a multipart post.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type NewPost struct {
	UserID      string
	Description string
	Latitude    string
	Longitude   string
	Media       []Upload
	Voice       []Upload
}

type PostService struct {
	posts repository.PostRepository
	store storage.Store
	log   zerolog.Logger
}

func NewPostService(posts repository.PostRepository, store storage.Store, log zerolog.Logger) *PostService {
	return &PostService{posts: posts, store: store, log: log}
}

func (s *PostService) Create(ctx context.Context, in NewPost) (*models.Post, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" && len(in.Voice) == 0 {
		return nil, invalidPost("either description or voice message is required")
	}
	if len(in.Media) == 0 {
		return nil, invalidPost("at least one media file (image/video) is required")
	}
	if len(in.Media) > MaxMediaFiles {
		return nil, invalidPost("at most %d media files are allowed", MaxMediaFiles)
	}
	if len(in.Voice) > MaxVoiceFiles {
		return nil, invalidPost("only one voice message is allowed")
	}
	for _, f := range in.Media {
		if !mediaTypes[baseType(f.ContentType)] {
			return nil, invalidPost("invalid file type %q", f.ContentType)
		}
	}
	for _, f := range in.Voice {
		if !voiceTypes[baseType(f.ContentType)] {
			return nil, invalidPost("invalid file type %q", f.ContentType)
		}
	}
	lat, lng, err := parseCoordinates(in.Latitude, in.Longitude)
	if err != nil {
		return nil, err
	}

	p := &models.Post{
		UserID:      in.UserID,
		Description: desc,
		Location:    models.NewGeoPoint(lat, lng),
		Media:       make([]string, 0, len(in.Media)),
	}
	var saved []string
	for _, f := range in.Media {
		url, err := s.store.Save(ctx, "media", f.Filename, baseType(f.ContentType), f.Body)
		if err != nil {
			s.discard(saved)
			return nil, err
		}
		saved = append(saved, url)
		p.Media = append(p.Media, url)
	}
	if len(in.Voice) == 1 {
		f := in.Voice[0]
		url, err := s.store.Save(ctx, "voice", f.Filename, baseType(f.ContentType), f.Body)
		if err != nil {
			s.discard(saved)
			return nil, err
		}
		saved = append(saved, url)
		p.VoiceMsg = url
	}

	if err := s.posts.Create(ctx, p); err != nil {
		s.discard(saved)
		return nil, err
	}
	return p, nil
}

// discard removes uploads of a post that was not stored. Failures are logged
// and leave the file behind.
func (s *PostService) discard(urls []string) {
	ctx, cancel := context.WithTimeout(context.Background(), discardTimeout)
	defer cancel()
	for _, url := range urls {
		if err := s.store.Delete(ctx, url); err != nil {
			s.log.Warn().Err(err).Str("url", url).Msg("orphaned upload not removed")
		}
	}
}

func (s *PostService) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.posts.List(ctx, limit, offset)
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.posts.Get(ctx, id)
}

func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	return s.posts.ToggleLike(ctx, postID, userID)
}

func (s *PostService) Comment(ctx context.Context, postID, userID, text string) (*models.PostComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalidPost("comment text is required")
	}
	return s.posts.AddComment(ctx, postID, userID, text)
}

func baseType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func parseCoordinates(latS, lngS string) (lat, lng float64, err error) {
	lat, err = strconv.ParseFloat(strings.TrimSpace(latS), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, invalidPost("latitude must be a number between -90 and 90")
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(lngS), 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, invalidPost("longitude must be a number between -180 and 180")
	}
	return lat, lng, nil
}
