// Package youtube uploads videos through the YouTube Data API.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Scopes are the OAuth scopes needed to upload videos and read their status.
var Scopes = []string{youtube.YoutubeUploadScope, youtube.YoutubeReadonlyScope}

// Upload Status constants.
const (
	UploadStatusUploaded  = "uploaded"
	UploadStatusProcessed = "processed"
	UploadStatusFailed    = "failed"
	UploadStatusRejected  = "rejected"
	UploadStatusDeleted   = "deleted"
)

var (
	// ErrQuotaExceeded is returned when the platform refuses an upload because
	// a daily or rate quota is used up.
	ErrQuotaExceeded = errors.New("upload quota exceeded")
	// ErrUnknownStatus is returned for an upload status this package does not know.
	ErrUnknownStatus = errors.New("unknown video status")
	// ErrVideoNotFound is returned by Status for an unknown video ID.
	ErrVideoNotFound = errors.New("video not found")
)

// quotaNote is appended to quota errors.
const quotaNote = `The YouTube Data API limits uploads per day. Nothing was retried;
run the upload again after the quota resets (midnight Pacific Time).`

// quotaReasons are API error reasons that mean a quota was hit.
var quotaReasons = map[string]bool{
	"quotaExceeded":       true,
	"uploadLimitExceeded": true,
	"rateLimitExceeded":   true,
	"dailyLimitExceeded":  true,
}

// Config holds configuration for the Uploader.
type Config struct {
	// HTTPClient must authorize requests, e.g. one built by auth.Client.
	HTTPClient *http.Client
	// Endpoint overrides the API base URL.
	Endpoint string
	// Progress is called with bytes sent so far and the total, if known.
	Progress func(current, total int64)
}

// Uploader performs video uploads and status lookups.
type Uploader struct {
	svc      *youtube.Service
	progress func(current, total int64)
}

// New creates an Uploader backed by an authorized HTTP client.
func New(ctx context.Context, cfg Config) (*Uploader, error) {
	if cfg.HTTPClient == nil {
		return nil, errors.New("an authorized HTTP client is required")
	}

	opts := []option.ClientOption{option.WithHTTPClient(cfg.HTTPClient)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create youtube service: %w", err)
	}

	return &Uploader{
		svc:      svc,
		progress: cfg.Progress,
	}, nil
}

// UploadFile uploads the video at path. The title defaults to the file name
// without its extension.
func (u *Uploader) UploadFile(ctx context.Context, path string, opts ...VideoUploadOption) (*youtube.Video, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return u.upload(ctx, f, info.Size(), TitleFromPath(path), opts...)
}

// Upload sends media as a new video in a single insert call.
//
// Metadata starts from defaultTitle, category People & Blogs, privacy
// unlisted and not made for kids; opts override these. Errors from the API
// are returned as-is, with quota failures also matching ErrQuotaExceeded.
// The call is never retried.
func (u *Uploader) Upload(ctx context.Context, media io.Reader, defaultTitle string, opts ...VideoUploadOption) (*youtube.Video, error) {
	return u.upload(ctx, media, 0, defaultTitle, opts...)
}

// upload sends media of the given size (0 if unknown) as one request.
//
// ChunkSize(0) streams the media in a single multipart request, which the
// client library never resends. Resumable chunks would be retried with backoff.
func (u *Uploader) upload(ctx context.Context, media io.Reader, size int64, defaultTitle string, opts ...VideoUploadOption) (*youtube.Video, error) {
	video, err := NewVideo(defaultTitle, opts...)
	if err != nil {
		return nil, err
	}

	if u.progress != nil {
		media = &progressReader{r: media, total: size, report: u.progress}
	}

	vid, err := u.svc.Videos.Insert([]string{"snippet", "status"}, video).
		Media(media, googleapi.ChunkSize(0)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyError(err)
	}

	return vid, nil
}

// Status checks the status for the video with the associated videoID.
// The returned status will be one of:
// - UploadStatusUploaded
// - UploadStatusProcessed
// - UploadStatusFailed
// - UploadStatusRejected
// - UploadStatusDeleted
func (u *Uploader) Status(ctx context.Context, videoID string) (string, error) {
	resp, err := u.svc.Videos.List([]string{"status"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get video status: %w", err)
	}

	if len(resp.Items) == 0 || resp.Items[0].Status == nil {
		return "", fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
	}

	switch s := resp.Items[0].Status.UploadStatus; s {
	case UploadStatusUploaded, UploadStatusProcessed, UploadStatusFailed,
		UploadStatusRejected, UploadStatusDeleted:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// TitleFromPath derives a video title from a file path.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	if title := strings.TrimSuffix(base, filepath.Ext(base)); title != "" {
		return title
	}
	return base
}

// WatchURL returns the public page for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// progressReader reports bytes read from r as upload progress.
type progressReader struct {
	r      io.Reader
	read   int64
	total  int64
	report func(current, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.report(p.read, p.total)
	}
	return n, err
}

// classifyError wraps quota failures with ErrQuotaExceeded.
func classifyError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		for _, item := range gerr.Errors {
			if quotaReasons[item.Reason] {
				return fmt.Errorf("%w: %w\n%s", ErrQuotaExceeded, err, quotaNote)
			}
		}
	}
	return fmt.Errorf("failed to insert video: %w", err)
}
