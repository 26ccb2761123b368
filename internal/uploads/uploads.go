// Package uploads stores course, lesson and slide files on local disk and
// serves them back.
package uploads

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrEmptyFilename    = errors.New("empty or unsafe filename")
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// Kind selects validation and processing for an upload.
type Kind int

const (
	Image Kind = iota
	Video
)

type Store struct {
	dir      string
	maxWidth int
	log      *zap.Logger
}

func NewStore(dir string, maxImageWidth int, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload dir")
	}
	return &Store{dir: dir, maxWidth: maxImageWidth, log: log.Named("uploads")}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes the uploaded file as "<uuid>_<sanitized name>" and returns that
// name, so two uploads never share a file.
func (s *Store) Save(fh *multipart.FileHeader, kind Kind) (string, error) {
	name := safeName(fh.Filename)
	if name == "" {
		return "", ErrEmptyFilename
	}
	if kind == Image && !AllowedImage(name) {
		return "", ErrUnsupportedImage
	}
	name = uuid.NewString() + "_" + name

	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening upload")
	}
	defer src.Close()

	dst := filepath.Join(s.dir, name)
	if kind == Image {
		err = writeImage(dst, src, s.maxWidth)
	} else {
		err = copyTo(dst, src)
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	s.log.Debug("file saved", zap.String("name", name))
	return name, nil
}

// Remove deletes a stored file. Missing files and unsafe names are ignored.
func (s *Store) Remove(name string) {
	if name == "" {
		return
	}
	full, ok := s.resolve(name)
	if !ok {
		return
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		s.log.Warn("remove failed", zap.String("name", name), zap.Error(err))
	}
}

// ServeFile serves a stored file by its logical path. Paths escaping the upload
// directory and missing files get 404.
func (s *Store) ServeFile(w http.ResponseWriter, r *http.Request, logical string) {
	full, ok := s.resolve(logical)
	if !ok {
		http.NotFound(w, r)
		return
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, full)
}

func (s *Store) resolve(logical string) (string, bool) {
	clean := filepath.Clean(filepath.FromSlash(logical))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(s.dir, clean), true
}

// safeName sanitizes the client filename. Names made only of non-Latin
// characters get a random base with the original extension.
func safeName(orig string) string {
	name := SecureFilename(orig)
	ext := SecureFilename(filepath.Ext(orig))
	if ext == "" || strings.HasSuffix(name, "."+ext) {
		return name
	}
	return uuid.NewString()[:8] + "." + ext
}

func copyTo(dst string, src io.Reader) error {
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrap(err, "creating file")
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return errors.Wrap(err, "writing file")
	}
	return errors.Wrap(f.Close(), "closing file")
}
