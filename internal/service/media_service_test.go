package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"socialfeed/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMediaService(t *testing.T) *MediaService {
	t.Helper()
	return NewMediaService(&config.Config{
		MediaDir:         t.TempDir(),
		MediaMaxUploadMB: 1,
	})
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMediaStore_StableRef(t *testing.T) {
	t.Parallel()

	svc := newTestMediaService(t)
	content := pngBytes(t, 64, 48)

	first, err := svc.Store(StoreMediaInput{Filename: "a.png", ContentType: "image/png", Content: content})
	require.NoError(t, err)
	assert.Equal(t, 64, first.Width)
	assert.Equal(t, 48, first.Height)

	// same bytes land on the same ref
	second, err := svc.Store(StoreMediaInput{Filename: "b.png", ContentType: "image/png", Content: content})
	require.NoError(t, err)
	assert.Equal(t, first.Ref, second.Ref)
	assert.Equal(t, first.Hash, second.Hash)
}

func TestMediaStore_RejectsNonImage(t *testing.T) {
	t.Parallel()

	svc := newTestMediaService(t)
	_, err := svc.Store(StoreMediaInput{Filename: "a.txt", Content: []byte("not an image at all, just text")})
	assertValidationError(t, err)
}

func TestMediaStore_RejectsEmpty(t *testing.T) {
	t.Parallel()

	svc := newTestMediaService(t)
	_, err := svc.Store(StoreMediaInput{Filename: "a.png"})
	assertValidationError(t, err)
}

func TestMediaStore_ResizesLargeImage(t *testing.T) {
	t.Parallel()

	svc := newTestMediaService(t)
	stored, err := svc.Store(StoreMediaInput{
		Filename:    "big.png",
		ContentType: "image/png",
		Content:     pngBytes(t, MasterMaxSize+512, 600),
	})
	require.NoError(t, err)
	assert.Equal(t, MasterMaxSize, stored.Width)
	assert.Less(t, stored.Height, 600)
}

func TestMediaResolveForServing(t *testing.T) {
	t.Parallel()

	svc := newTestMediaService(t)
	stored, err := svc.Store(StoreMediaInput{Filename: "a.png", ContentType: "image/png", Content: pngBytes(t, 32, 32)})
	require.NoError(t, err)

	path, err := svc.ResolveForServing(stored.Hash, "master.jpg")
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = svc.ResolveForServing(stored.Hash, "thumb.webp")
	require.NoError(t, err)

	// traversal attempts are rejected
	_, err = svc.ResolveForServing("../../etc", "master.jpg")
	require.Error(t, err)
	_, err = svc.ResolveForServing(stored.Hash, "../secret")
	require.Error(t, err)
}
