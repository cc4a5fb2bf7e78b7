package ebitenview

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/corkboard/filestore"
	"go.uber.org/zap"
)

// Screenshot queues a labeled capture of the next drawn frame. The PNG is
// written to Options.ScreenshotDir with a timestamped name.
func (v *View) Screenshot(label string) {
	v.screenshotQueue = append(v.screenshotQueue, label)
}

// flushScreenshots captures the rendered frame for every queued label.
// Called at the end of Draw.
func (v *View) flushScreenshots(screen *ebiten.Image) {
	if len(v.screenshotQueue) == 0 {
		return
	}
	bounds := screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	screen.ReadPixels(pixels)

	v.writeScreenshots(unpremultiply(pixels, w, h), time.Now())
}

// writeScreenshots writes img once per queued label and clears the queue.
func (v *View) writeScreenshots(img *image.NRGBA, now time.Time) []string {
	defer func() { v.screenshotQueue = v.screenshotQueue[:0] }()

	dir := v.opts.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.log.Warn("screenshot dir", zap.String("dir", dir), zap.Error(err))
		return nil
	}
	stamp := now.Format("20060102_150405")
	var written []string
	for _, label := range v.screenshotQueue {
		path := filepath.Join(dir, stamp+"_"+filestore.SanitizeName(label)+".png")
		if err := writePNG(path, img); err != nil {
			v.log.Warn("screenshot failed", zap.Error(err))
			continue
		}
		written = append(written, path)
		v.setStatus("screenshot " + filepath.Base(path))
	}
	return written
}

// unpremultiply converts premultiplied RGBA pixels to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
