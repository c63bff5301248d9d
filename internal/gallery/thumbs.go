package gallery

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/nfnt/resize"
)

// PhotoPrefix is the URL prefix under which local photos are served.
const PhotoPrefix = "/photos/"

var ErrRemote = errors.New("image is not stored locally")

// IsRemote reports whether locator points at another host.
func IsRemote(locator string) bool {
	u, err := url.Parse(locator)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// LocalName maps a locator such as "/photos/2024/beach.jpg" to its name in
// the photos filesystem.
func LocalName(locator string) (string, error) {
	if IsRemote(locator) {
		return "", ErrRemote
	}
	name := strings.TrimPrefix(locator, PhotoPrefix)
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if !fs.ValidPath(name) || name == "." {
		return "", fmt.Errorf("invalid photo path %q", locator)
	}
	return name, nil
}

// Thumbnailer produces bounded JPEG previews of local photos and keeps them
// in memory.
type Thumbnailer struct {
	Photos  fs.FS
	MaxSize uint

	mu    sync.Mutex
	cache map[string][]byte
}

func NewThumbnailer(photos fs.FS, maxSize uint) *Thumbnailer {
	return &Thumbnailer{
		Photos:  photos,
		MaxSize: maxSize,
		cache:   make(map[string][]byte),
	}
}

// Thumbnail returns the JPEG preview for locator.
func (t *Thumbnailer) Thumbnail(locator string) ([]byte, error) {
	name, err := LocalName(locator)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	buf, ok := t.cache[name]
	t.mu.Unlock()
	if ok {
		return buf, nil
	}

	f, err := t.Photos.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode photo %s: %w", name, err)
	}

	thumb := resize.Thumbnail(t.MaxSize, t.MaxSize, img, resize.Lanczos3)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode thumbnail %s: %w", name, err)
	}

	t.mu.Lock()
	t.cache[name] = out.Bytes()
	t.mu.Unlock()
	return out.Bytes(), nil
}
