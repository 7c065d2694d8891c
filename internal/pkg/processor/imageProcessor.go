package processor

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/negative-web/internal/entity"
)

// Inspection describes a downloaded image. Preview is a PNG no larger than
// the configured bound on either side.
type Inspection struct {
	Width   int
	Height  int
	Format  string
	Preview []byte
}

type ImageProcessor interface {
	Inspect(blob *entity.Blob) (*Inspection, error)
}

type imageProcessor struct {
	previewSize int
}

func NewImageProcessor(previewSize int) ImageProcessor {
	if previewSize <= 0 {
		previewSize = 256
	}
	return &imageProcessor{previewSize: previewSize}
}

func (p *imageProcessor) Inspect(blob *entity.Blob) (*Inspection, error) {
	if blob == nil || len(blob.Data) == 0 {
		return nil, entity.ErrNotAnImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(blob.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrNotAnImage, err)
	}

	img, err := imaging.Decode(bytes.NewReader(blob.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrNotAnImage, err)
	}

	preview, err := p.preview(img)
	if err != nil {
		return nil, err
	}

	return &Inspection{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Format:  format,
		Preview: preview,
	}, nil
}

func (p *imageProcessor) preview(img image.Image) ([]byte, error) {
	b := img.Bounds()
	if b.Dx() > p.previewSize || b.Dy() > p.previewSize {
		img = imaging.Fit(img, p.previewSize, p.previewSize, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
