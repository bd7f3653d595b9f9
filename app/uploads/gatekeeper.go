package uploads

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/sha3"

	"studentblog/app/apperr"
	"studentblog/app/validation"
)

const (
	// DefaultMaxSize is the upload ceiling, 100 MiB.
	DefaultMaxSize int64 = 100 << 20

	// DefaultDir is where post pictures are written.
	DefaultDir = "public/uploads/posts-pictures"

	maxNameAttempts = 1000
)

// AllowedTypes is the MIME allow-list for post pictures.
var AllowedTypes = []string{"image/jpeg", "image/png", "image/jpg"}

// StoredImage describes a committed upload.
type StoredImage struct {
	Name   string
	Size   int64
	Digest string
}

// Gatekeeper inspects uploaded pictures and writes accepted ones to disk.
type Gatekeeper struct {
	dir     string
	maxSize int64
	allowed map[string]bool
	now     func() time.Time
}

// New creates a Gatekeeper writing into dir. A maxSize of 0 uses DefaultMaxSize.
func New(dir string, maxSize int64) *Gatekeeper {
	if dir == "" {
		dir = DefaultDir
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	allowed := make(map[string]bool, len(AllowedTypes))
	for _, t := range AllowedTypes {
		allowed[t] = true
	}
	return &Gatekeeper{dir: dir, maxSize: maxSize, allowed: allowed, now: time.Now}
}

// Dir returns the destination directory.
func (g *Gatekeeper) Dir() string {
	return g.dir
}

// MaxSize returns the size ceiling in bytes.
func (g *Gatekeeper) MaxSize() int64 {
	return g.maxSize
}

// Require returns a check that rejects the request unless field carries
// exactly one acceptable file. Nothing is written.
func (g *Gatekeeper) Require(field string) validation.Check {
	return validation.CheckFunc(func(_ context.Context, in *validation.Input) error {
		files := in.Files[field]
		if len(files) == 0 {
			return apperr.Validation(apperr.FieldError{
				Field:    field,
				Location: string(validation.InBody),
				Message:  field + " is required",
			})
		}
		return g.Inspect(files[0])
	})
}

// Inspect checks the declared MIME type and size of an upload.
func (g *Gatekeeper) Inspect(fh *multipart.FileHeader) error {
	declared := fh.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !g.allowed[strings.ToLower(mediaType)] {
		return apperr.UnsupportedMediaType("only the following file types are accepted: %s", strings.Join(AllowedTypes, ", "))
	}
	if fh.Size > g.maxSize {
		return apperr.PayloadTooLarge("file exceeds the %d byte limit", g.maxSize)
	}
	return nil
}

// Store writes an inspected upload under a unique name derived from the
// original file name and the current time. A failed store leaves no file behind.
func (g *Gatekeeper) Store(fh *multipart.FileHeader) (*StoredImage, error) {
	if err := g.Inspect(fh); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return nil, apperr.Storage("failed to prepare upload directory", err)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, apperr.Storage("failed to read upload", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(g.dir, ".upload-*")
	if err != nil {
		return nil, apperr.Storage("failed to create upload file", err)
	}
	defer os.Remove(tmp.Name())

	digest := sha3.New256()
	n, err := io.Copy(io.MultiWriter(tmp, digest), io.LimitReader(src, g.maxSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, apperr.Storage("failed to write upload", err)
	}
	if n > g.maxSize {
		return nil, apperr.PayloadTooLarge("file exceeds the %d byte limit", g.maxSize)
	}

	name, err := g.commit(tmp.Name(), fh.Filename)
	if err != nil {
		return nil, apperr.Storage("failed to store upload", err)
	}

	img := &StoredImage{Name: name, Size: n, Digest: hex.EncodeToString(digest.Sum(nil))}
	log.WithFields(log.Fields{"name": img.Name, "size": img.Size, "sha3": img.Digest}).Debug("[uploads] image stored")
	return img, nil
}

// Remove deletes a stored image. A missing file is not an error.
func (g *Gatekeeper) Remove(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid image name %q", name)
	}
	err := os.Remove(filepath.Join(g.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// commit links the temporary file to its final name, moving the timestamp
// forward until the name is free.
func (g *Gatekeeper) commit(tmpPath, original string) (string, error) {
	stem, ext := splitName(original)
	stamp := g.now().UnixMilli()

	for i := 0; i < maxNameAttempts; i++ {
		name := fmt.Sprintf("%s-%d%s", stem, stamp, ext)
		err := os.Link(tmpPath, filepath.Join(g.dir, name))
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		stamp++
	}
	return "", fmt.Errorf("no free name for %q after %d attempts", original, maxNameAttempts)
}

// splitName returns the base name without extension and the extension of a
// client supplied file name, with any directory part dropped.
func splitName(original string) (string, string) {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stem = strings.Map(func(r rune) rune {
		if r == '/' || r == 0 {
			return -1
		}
		return r
	}, stem)
	if stem == "" || strings.HasPrefix(stem, ".") {
		stem = "image" + stem
	}
	return stem, ext
}
