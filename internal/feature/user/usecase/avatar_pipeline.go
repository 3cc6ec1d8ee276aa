package usecase

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"social_backend/internal/shared/apperror"
)

const (
	// AvatarWidth is the width every stored avatar is resized to. Height follows the aspect ratio.
	AvatarWidth = 250

	// MaxAvatarBytes is the largest upload accepted at intake.
	MaxAvatarBytes = 1 << 20
)

// AvatarUpload is an image accepted at intake, held in memory.
type AvatarUpload struct {
	Data        []byte
	ContentType string
}

// ImageResizer decodes an image, scales it to width and re-encodes it in format.
type ImageResizer interface {
	Resize(data []byte, format string, width int) ([]byte, error)
}

// AvatarStore writes processed avatars.
type AvatarStore interface {
	// Save writes data at path, replacing any existing object.
	Save(ctx context.Context, path string, data []byte, contentType string) error
}

// avatarPipeline names, resizes and stores uploaded avatars.
type avatarPipeline struct {
	resizer ImageResizer
	store   AvatarStore
	root    string
	now     func() time.Time
}

// NewAvatarPipeline creates an avatarPipeline writing under root.
func NewAvatarPipeline(resizer ImageResizer, store AvatarStore, root string) *avatarPipeline {
	return &avatarPipeline{
		resizer: resizer,
		store:   store,
		root:    strings.TrimRight(root, "/"),
		now:     time.Now,
	}
}

// IsImageType reports whether a MIME type is accepted at intake.
func IsImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}

// ExtensionFor returns the file extension for an image MIME type, taken from its subtype.
// Parameters and structured-syntax suffixes are dropped: "image/svg+xml; q=1" gives "svg".
func ExtensionFor(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	_, sub, ok := strings.Cut(ct, "/")
	if !ok || sub == "" {
		return ""
	}
	if i := strings.IndexByte(sub, '+'); i >= 0 {
		sub = sub[:i]
	}
	return sub
}

// AvatarPath returns the storage path for an avatar of username uploaded at t.
func (p *avatarPipeline) AvatarPath(username, contentType string, t time.Time) string {
	username = strings.NewReplacer("/", "_", "\\", "_").Replace(username)
	name := fmt.Sprintf("%s-%d.%s", username, t.UnixMilli(), ExtensionFor(contentType))
	if p.root == "" {
		return name
	}
	return path.Join(p.root, name)
}

// Process resizes the upload and writes it, returning the path to store as the user's avatar.
// A file written here is not removed if a later step fails.
func (p *avatarPipeline) Process(ctx context.Context, username string, upload *AvatarUpload) (string, error) {
	if upload == nil || len(upload.Data) == 0 {
		return "", apperror.Media(fmt.Errorf("empty upload"))
	}
	if !IsImageType(upload.ContentType) {
		return "", apperror.Media(fmt.Errorf("unsupported content type %q", upload.ContentType))
	}

	dst := p.AvatarPath(username, upload.ContentType, p.now())

	resized, err := p.resizer.Resize(upload.Data, ExtensionFor(upload.ContentType), AvatarWidth)
	if err != nil {
		return "", apperror.Media(fmt.Errorf("resize avatar: %w", err))
	}
	if err := p.store.Save(ctx, dst, resized, upload.ContentType); err != nil {
		return "", apperror.Media(fmt.Errorf("write avatar %s: %w", dst, err))
	}
	return dst, nil
}
