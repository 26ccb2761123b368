package uploads

import (
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// writeImage decodes src and writes it to dst, shrunk to maxWidth when wider.
// GIFs are copied as is to keep animation.
func writeImage(dst string, src io.Reader, maxWidth int) error {
	if strings.EqualFold(filepath.Ext(dst), ".gif") {
		return copyTo(dst, src)
	}

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return errors.Wrap(ErrUnsupportedImage, err.Error())
	}
	img = fit(img, maxWidth)

	if err := imaging.Save(img, dst, imaging.JPEGQuality(85)); err != nil {
		return errors.Wrap(err, "saving image")
	}
	return nil
}

func fit(img image.Image, maxWidth int) image.Image {
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}
