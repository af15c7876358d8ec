package youtube

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/youtube/v3"
)

// Privacy is a video's visibility on the platform.
type Privacy string

// Privacy values accepted by the API.
const (
	PrivacyPublic   Privacy = "public"
	PrivacyPrivate  Privacy = "private"
	PrivacyUnlisted Privacy = "unlisted"
)

// DefaultPrivacy is applied when no privacy is requested.
const DefaultPrivacy = PrivacyUnlisted

// DefaultCategory is People & Blogs.
const DefaultCategory = "22"

// ErrInvalidPrivacy is returned for a visibility outside public, private and unlisted.
var ErrInvalidPrivacy = errors.New("invalid privacy status")

// ParsePrivacy validates s as a privacy status. Matching is exact.
func ParsePrivacy(s string) (Privacy, error) {
	p := Privacy(s)
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacyUnlisted:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q (must be one of public, private, unlisted)", ErrInvalidPrivacy, s)
}

// VideoUploadOption is a functional option type for configuring video uploads.
type VideoUploadOption func(*youtube.Video) error

// WithTitle sets the title of the video being uploaded.
// It returns an error if the title is empty.
func WithTitle(title string) VideoUploadOption {
	return func(video *youtube.Video) error {
		if strings.TrimSpace(title) == "" {
			return fmt.Errorf("title cannot be empty")
		}
		video.Snippet.Title = title
		return nil
	}
}

// WithDescription sets the description of the video being uploaded.
func WithDescription(description string) VideoUploadOption {
	return func(video *youtube.Video) error {
		video.Snippet.Description = description
		return nil
	}
}

// WithCategory sets the category of the video being uploaded. It accepts a
// category ID ("22") or name ("People & Blogs").
// It returns an error if the category ID/name is not found.
func WithCategory(category string) VideoUploadOption {
	return func(video *youtube.Video) error {
		video.Snippet.CategoryId = sanitiseCategory(category)
		if video.Snippet.CategoryId == "" {
			return fmt.Errorf("invalid category ID or name: %s", category)
		}
		return nil
	}
}

// WithPrivacy sets the privacy status of the video being uploaded.
func WithPrivacy(privacy Privacy) VideoUploadOption {
	return func(video *youtube.Video) error {
		p, err := ParsePrivacy(string(privacy))
		if err != nil {
			return err
		}
		video.Status.PrivacyStatus = string(p)
		return nil
	}
}

// WithTags sets the tags for the video being uploaded. Empty tags are dropped.
func WithTags(tags []string) VideoUploadOption {
	return func(video *youtube.Video) error {
		kept := make([]string, 0, len(tags))
		for _, tag := range tags {
			if tag = strings.TrimSpace(tag); tag != "" {
				kept = append(kept, tag)
			}
		}
		video.Snippet.Tags = kept
		return nil
	}
}

// WithMadeForKids records the self-declared made-for-kids flag.
func WithMadeForKids(madeForKids bool) VideoUploadOption {
	return func(video *youtube.Video) error {
		video.Status.SelfDeclaredMadeForKids = madeForKids
		// A false value is still meaningful to the API.
		video.Status.ForceSendFields = append(video.Status.ForceSendFields, "SelfDeclaredMadeForKids")
		return nil
	}
}

// NewVideo builds upload metadata from defaults and opts. It lets callers
// validate options before any network access.
func NewVideo(defaultTitle string, opts ...VideoUploadOption) (*youtube.Video, error) {
	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:      defaultTitle,
			CategoryId: DefaultCategory,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:   string(DefaultPrivacy),
			ForceSendFields: []string{"SelfDeclaredMadeForKids"},
		},
	}

	for _, opt := range opts {
		if err := opt(video); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if strings.TrimSpace(video.Snippet.Title) == "" {
		return nil, fmt.Errorf("title cannot be empty")
	}
	return video, nil
}

// categories maps category IDs to their names.
var categories = map[string]string{
	"1":  "Film & Animation",
	"2":  "Autos & Vehicles",
	"10": "Music",
	"15": "Pets & Animals",
	"17": "Sports",
	"18": "Short Movies",
	"19": "Travel & Events",
	"20": "Gaming",
	"21": "Videoblogging",
	"22": "People & Blogs",
	"23": "Comedy",
	"24": "Entertainment",
	"25": "News & Politics",
	"26": "Howto & Style",
	"27": "Education",
	"28": "Science & Technology",
	"29": "Nonprofits & Activism",
	"30": "Movies",
	"31": "Anime/Animation",
	"32": "Action/Adventure",
	"33": "Classics",
	"35": "Documentary",
	"36": "Drama",
	"37": "Family",
	"38": "Foreign",
	"39": "Horror",
	"40": "Sci-Fi/Fantasy",
	"41": "Thriller",
	"42": "Shorts",
	"43": "Shows",
	"44": "Trailers",
}

// sanitiseCategory returns the ID for a category ID or case-insensitive
// name, or "" if it is unknown.
func sanitiseCategory(cat string) string {
	cat = strings.TrimSpace(cat)
	if _, ok := categories[cat]; ok {
		return cat
	}
	for id, name := range categories {
		if strings.EqualFold(name, cat) {
			return id
		}
	}
	return ""
}
