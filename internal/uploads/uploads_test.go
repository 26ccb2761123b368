package uploads

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{"i contain cool ümläuts.txt", "i_contain_cool_umlauts.txt"},
		{`C:\Users\me\photo.JPG`, "C_Users_me_photo.JPG"},
		{"...", ""},
		{"صورة.png", "png"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureFilename(tt.in))
		})
	}
}

func TestAllowedImage(t *testing.T) {
	for _, name := range []string{"a.png", "a.JPG", "a.jpeg", "a.gif"} {
		assert.True(t, AllowedImage(name), name)
	}
	for _, name := range []string{"a.svg", "a.mp4", "png", ""} {
		assert.False(t, AllowedImage(name), name)
	}
}

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func newStore(t *testing.T, maxWidth int) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), maxWidth, zap.NewNop())
	require.NoError(t, err)
	return s
}

// assertStoredName checks the "<uuid>_<base>" layout of a saved file.
func assertStoredName(t *testing.T, name, base string) {
	t.Helper()
	prefix, rest, ok := strings.Cut(name, "_")
	require.True(t, ok, name)
	_, err := uuid.Parse(prefix)
	assert.NoError(t, err, "prefix of %q", name)
	assert.Equal(t, base, rest)
}

func TestStore_SaveImage(t *testing.T) {
	s := newStore(t, 20)

	name, err := s.Save(fileHeader(t, "cover photo.png", pngBytes(t, 40, 10)), Image)
	require.NoError(t, err)
	assertStoredName(t, name, "cover_photo.png")

	f, err := os.Open(filepath.Join(s.Dir(), name))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Width, "downscaled to max width")

	t.Run("same name is not overwritten", func(t *testing.T) {
		second, err := s.Save(fileHeader(t, "cover photo.png", pngBytes(t, 5, 5)), Image)
		require.NoError(t, err)
		assert.NotEqual(t, name, second)
		assertStoredName(t, second, "cover_photo.png")
	})

	t.Run("rejects other extensions", func(t *testing.T) {
		_, err := s.Save(fileHeader(t, "logo.svg", []byte("<svg/>")), Image)
		assert.True(t, errors.Is(err, ErrUnsupportedImage))
	})

	t.Run("rejects undecodable data", func(t *testing.T) {
		_, err := s.Save(fileHeader(t, "broken.png", []byte("not an image")), Image)
		assert.True(t, errors.Is(err, ErrUnsupportedImage))
		left, err := filepath.Glob(filepath.Join(s.Dir(), "*broken.png"))
		require.NoError(t, err)
		assert.Empty(t, left)
	})

	t.Run("non-latin name keeps extension", func(t *testing.T) {
		name, err := s.Save(fileHeader(t, "صورة.png", pngBytes(t, 5, 5)), Image)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(name, ".png"))
	})
}

func TestStore_SaveConcurrentSameName(t *testing.T) {
	s := newStore(t, 0)

	const n = 8
	files := make([]*multipart.FileHeader, n)
	for i := range files {
		files[i] = fileHeader(t, "notes.mp4", []byte(strconv.Itoa(i)))
	}
	names := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name, err := s.Save(files[i], Video)
			assert.NoError(t, err)
			names[i] = name
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i, name := range names {
		assert.False(t, seen[name], "duplicate name %q", name)
		seen[name] = true
		data, err := os.ReadFile(filepath.Join(s.Dir(), name))
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(i), string(data))
	}
}

func TestStore_SaveVideoAndRemove(t *testing.T) {
	s := newStore(t, 0)

	name, err := s.Save(fileHeader(t, "lesson 1.mp4", []byte("video-bytes")), Video)
	require.NoError(t, err)
	assertStoredName(t, name, "lesson_1.mp4")

	data, err := os.ReadFile(filepath.Join(s.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))

	s.Remove(name)
	_, err = os.Stat(filepath.Join(s.Dir(), name))
	assert.True(t, os.IsNotExist(err))

	s.Remove(name)
	s.Remove("../outside")
}

func TestStore_ServeFile(t *testing.T) {
	s := newStore(t, 0)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "sub"), 0o755))

	outside := filepath.Join(filepath.Dir(s.Dir()), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

	tests := []struct {
		path     string
		wantCode int
	}{
		{"a.txt", http.StatusOK},
		{"sub/../a.txt", http.StatusOK},
		{"../secret.txt", http.StatusNotFound},
		{"sub/../../secret.txt", http.StatusNotFound},
		{"missing.txt", http.StatusNotFound},
		{"sub", http.StatusNotFound},
		{"/etc/passwd", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.ServeFile(rec, httptest.NewRequest(http.MethodGet, "/uploads/x", nil), tt.path)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "hello", rec.Body.String())
			}
		})
	}
}
