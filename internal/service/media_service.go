package service

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"socialfeed/internal/config"
	"socialfeed/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMediaDir         = "/tmp/socialfeed/media"
	DefaultMediaMaxUploadMB = 10
	MasterMaxSize           = 2048
	ThumbnailSize           = 256
	JPEGQuality             = 82
	WebPQuality             = 70
)

type StoreMediaInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// StoredMedia describes a persisted upload. Ref is the stable path
// clients use to fetch the image; identical content always produces the
// same ref.
type StoredMedia struct {
	Hash      string
	Ref       string
	ThumbRef  string
	Width     int
	Height    int
	SizeBytes int64
}

type MediaService struct {
	mediaDir           string
	maxUploadSizeBytes int64
}

func NewMediaService(cfg *config.Config) *MediaService {
	mediaDir := DefaultMediaDir
	maxUploadMB := DefaultMediaMaxUploadMB

	if cfg != nil {
		if cfg.MediaDir != "" {
			mediaDir = cfg.MediaDir
		}
		if cfg.MediaMaxUploadMB > 0 {
			maxUploadMB = cfg.MediaMaxUploadMB
		}
	}

	return &MediaService{
		mediaDir:           mediaDir,
		maxUploadSizeBytes: int64(maxUploadMB) * 1024 * 1024,
	}
}

// Store validates and persists an uploaded image. The master copy is
// re-encoded as JPEG capped at MasterMaxSize, with a WebP thumbnail
// alongside it. Re-uploading the same bytes lands on the same hash and
// returns the existing ref.
func (s *MediaService) Store(in StoreMediaInput) (*StoredMedia, error) {
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if !isSupportedDecodedFormat(format) {
		return nil, models.NewValidationError("Unsupported image format")
	}

	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, decodedFormatToMime(format)) {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)
	masterJPG, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	sum := sha256.Sum256(in.Content)
	hash := hex.EncodeToString(sum[:])
	b := master.Bounds()
	stored := &StoredMedia{
		Hash:      hash,
		Ref:       fmt.Sprintf("/media/%s/master.jpg", hash),
		ThumbRef:  fmt.Sprintf("/media/%s/thumb.webp", hash),
		Width:     b.Dx(),
		Height:    b.Dy(),
		SizeBytes: int64(len(masterJPG)),
	}

	masterAbs := filepath.Join(s.mediaDir, hash, "master.jpg")
	if _, statErr := os.Stat(masterAbs); statErr == nil {
		// Same content already on disk.
		return stored, nil
	}

	if err := writeBytesToFile(masterAbs, masterJPG); err != nil {
		return nil, models.NewInternalError(err)
	}

	thumb := resizeToFit(master, ThumbnailSize, ThumbnailSize)
	thumbWebP, err := encodeWebP(thumb, WebPQuality)
	if err != nil {
		_ = os.Remove(masterAbs)
		return nil, models.NewInternalError(err)
	}
	if err := writeBytesToFile(filepath.Join(s.mediaDir, hash, "thumb.webp"), thumbWebP); err != nil {
		_ = os.Remove(masterAbs)
		return nil, models.NewInternalError(err)
	}

	return stored, nil
}

// ResolveForServing maps a hash and filename back to an absolute path,
// rejecting anything that could escape the media directory.
func (s *MediaService) ResolveForServing(hash, filename string) (string, error) {
	if !isValidMediaHash(hash) {
		return "", models.NewValidationError("Invalid media hash")
	}
	switch filename {
	case "master.jpg", "thumb.webp":
	default:
		return "", models.NewNotFoundError("Media", filename)
	}
	fullPath := filepath.Join(s.mediaDir, hash, filename)
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", models.NewNotFoundError("Media", hash)
		}
		return "", models.NewInternalError(err)
	}
	return fullPath, nil
}

// isValidMediaHash checks that the hash is strictly lowercase hex
// (SHA-256 style). This prevents path traversal via crafted hash
// parameters.
func isValidMediaHash(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
