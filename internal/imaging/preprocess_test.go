package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestPreprocess_Upscale(t *testing.T) {
	img := solidImage(400, 200, color.White)
	out := Preprocess(img, PreprocessOptions{MinWidth: 800})

	if w, h := out.Bounds().Dx(), out.Bounds().Dy(); w != 800 || h != 400 {
		t.Errorf("dimensions: got %dx%d, want 800x400", w, h)
	}
}

func TestPreprocess_NoUpscaleWhenWideEnough(t *testing.T) {
	img := solidImage(2000, 1000, color.White)
	out := Preprocess(img, PreprocessOptions{MinWidth: 800})
	if out.Bounds().Dx() != 2000 {
		t.Errorf("width: got %d, want 2000", out.Bounds().Dx())
	}
}

func TestPreprocess_Grayscale(t *testing.T) {
	img := solidImage(20, 20, color.RGBA{200, 30, 30, 255})
	out := Preprocess(img, PreprocessOptions{Grayscale: true})

	r, g, b, _ := out.At(10, 10).RGBA()
	if r != g || g != b {
		t.Errorf("pixel not gray: (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestPreprocess_DenoiseRemovesSpeck(t *testing.T) {
	img := solidImage(21, 21, color.White)
	img.Set(10, 10, color.Black)

	out := Preprocess(img, PreprocessOptions{DenoiseRadius: 1})

	r, _, _, _ := out.At(10, 10).RGBA()
	if r>>8 < 200 {
		t.Errorf("isolated speck survived median filter: r=%d", r>>8)
	}
}

func TestPreprocess_DefaultsKeepAspect(t *testing.T) {
	img := solidImage(300, 100, color.White)
	out := Preprocess(img, DefaultPreprocess())
	b := out.Bounds()
	if b.Dx()*100 != b.Dy()*300 {
		t.Errorf("aspect changed: %dx%d", b.Dx(), b.Dy())
	}
}

func TestPreprocessBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(50, 25, color.White)); err != nil {
		t.Fatal(err)
	}

	t.Run("disabled returns input", func(t *testing.T) {
		out, err := PreprocessBytes(buf.Bytes(), PreprocessOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(out, buf.Bytes()) {
			t.Error("disabled preprocessing should return raw bytes")
		}
	})

	t.Run("enabled re-encodes PNG", func(t *testing.T) {
		out, err := PreprocessBytes(buf.Bytes(), PreprocessOptions{MinWidth: 100})
		if err != nil {
			t.Fatal(err)
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		if err != nil {
			t.Fatal(err)
		}
		if format != "png" || cfg.Width != 100 || cfg.Height != 50 {
			t.Errorf("got %s %dx%d, want png 100x50", format, cfg.Width, cfg.Height)
		}
	})

	t.Run("bad input", func(t *testing.T) {
		if _, err := PreprocessBytes([]byte("nope"), DefaultPreprocess()); err == nil {
			t.Error("expected decode error")
		}
	})
}
