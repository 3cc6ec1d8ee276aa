package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"social_backend/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        string
	}{
		{"image/png", "png"},
		{"image/jpeg", "jpeg"},
		{"IMAGE/GIF", "gif"},
		{"image/svg+xml", "svg"},
		{"image/webp; charset=binary", "webp"},
		{"image/", ""},
		{"png", ""},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtensionFor(tt.contentType))
		})
	}
}

func TestIsImageType(t *testing.T) {
	t.Parallel()

	assert.True(t, IsImageType("image/png"))
	assert.True(t, IsImageType("Image/JPEG"))
	assert.False(t, IsImageType("text/plain"))
	assert.False(t, IsImageType("application/octet-stream"))
	assert.False(t, IsImageType(""))
}

func TestAvatarPipeline_AvatarPath(t *testing.T) {
	t.Parallel()

	p := NewAvatarPipeline(&mockImageResizer{}, &mockAvatarStore{}, "/static/uploads/avatars/")
	at := time.UnixMilli(1700000000123)

	assert.Equal(t, "/static/uploads/avatars/alice-1700000000123.png", p.AvatarPath("alice", "image/png", at))
	assert.Equal(t, "/static/uploads/avatars/a_b-1700000000123.jpeg", p.AvatarPath("a/b", "image/jpeg", at))
}

func TestAvatarPipeline_Process(t *testing.T) {
	t.Parallel()

	var gotFormat string
	var gotWidth int
	resizer := &mockImageResizer{
		ResizeFunc: func(data []byte, format string, width int) ([]byte, error) {
			gotFormat, gotWidth = format, width
			return []byte("resized"), nil
		},
	}
	store := &mockAvatarStore{}
	p := NewAvatarPipeline(resizer, store, "static/uploads/avatars")
	p.now = func() time.Time { return time.UnixMilli(42) }

	path, err := p.Process(context.Background(), "alice", &AvatarUpload{Data: []byte("raw"), ContentType: "image/png"})

	require.NoError(t, err)
	assert.Equal(t, "static/uploads/avatars/alice-42.png", path)
	assert.True(t, strings.HasSuffix(path, ".png"))
	assert.Equal(t, "png", gotFormat)
	assert.Equal(t, AvatarWidth, gotWidth)
	assert.Equal(t, []string{path}, store.saved)
}

func TestAvatarPipeline_ProcessFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		upload  *AvatarUpload
		resizer *mockImageResizer
		store   *mockAvatarStore
	}{
		{
			name:    "non-image never reaches resize",
			upload:  &AvatarUpload{Data: []byte("hello"), ContentType: "text/plain"},
			resizer: &mockImageResizer{ResizeFunc: func([]byte, string, int) ([]byte, error) { panic("resize called") }},
			store:   &mockAvatarStore{},
		},
		{
			name:    "empty upload",
			upload:  &AvatarUpload{ContentType: "image/png"},
			resizer: &mockImageResizer{},
			store:   &mockAvatarStore{},
		},
		{
			name:    "corrupt image",
			upload:  &AvatarUpload{Data: []byte("garbage"), ContentType: "image/png"},
			resizer: &mockImageResizer{ResizeFunc: func([]byte, string, int) ([]byte, error) { return nil, errors.New("png: invalid format") }},
			store:   &mockAvatarStore{},
		},
		{
			name:    "store failure",
			upload:  &AvatarUpload{Data: []byte("raw"), ContentType: "image/png"},
			resizer: &mockImageResizer{},
			store: &mockAvatarStore{SaveFunc: func(context.Context, string, []byte, string) error {
				return errors.New("read-only file system")
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewAvatarPipeline(tt.resizer, tt.store, "avatars")

			path, err := p.Process(context.Background(), "alice", tt.upload)

			require.Error(t, err)
			assert.Empty(t, path)
			assert.Equal(t, apperror.KindMedia, apperror.KindOf(err))
			assert.Empty(t, tt.store.saved)
		})
	}
}
