package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"reflect"
	"testing"
)

type missing struct{ *PNGEncoder }

func (missing) Format() string  { return "avif" }
func (missing) Available() bool { return false }

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 6), uint8(y * 8), 90, 255})
		}
	}
	return img
}

func TestStdlibEncoders(t *testing.T) {
	img := testImage()

	data, err := (&JPEGEncoder{}).Encode(img, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("jpeg output does not decode: %v", err)
	}

	data, err = (&PNGEncoder{}).Encode(img, 50)
	if err != nil {
		t.Fatal(err)
	}
	back, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png output does not decode: %v", err)
	}
	if got := color.NRGBAModel.Convert(back.At(10, 10)); got != img.At(10, 10) {
		t.Errorf("png is not lossless: %v vs %v", got, img.At(10, 10))
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistryWith(missing{&PNGEncoder{}}, &JPEGEncoder{}, &PNGEncoder{})
	if got := r.Available(); !reflect.DeepEqual(got, []string{"jpeg", "png"}) {
		t.Errorf("available %v", got)
	}
	if r.Get("avif") != nil {
		t.Error("unavailable encoder registered")
	}
	if r.Get("JPG") == nil {
		t.Error("jpg alias not resolved")
	}

	tests := []struct {
		req  []string
		want []string
	}{
		{[]string{"avif", "webp"}, []string{"jpeg"}},
		{[]string{"png", "jpg", "jpeg"}, []string{"png", "jpeg"}},
		{nil, []string{"jpeg"}},
	}
	for _, tt := range tests {
		if got := r.ResolveFormats(tt.req); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ResolveFormats(%v) = %v, want %v", tt.req, got, tt.want)
		}
	}
}

func TestExternalEncoder_Missing(t *testing.T) {
	e := &WebPEncoder{t: tool{name: "momento-no-such-encoder", hint: "n/a"}}
	if e.Available() {
		t.Skip("unexpected binary on PATH")
	}
	if _, err := e.Encode(testImage(), 80); err == nil {
		t.Error("missing tool did not error")
	}
}

func TestJPEGEncoder_FlattensOverWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	data, err := (&JPEGEncoder{}).Encode(img, 90)
	if err != nil {
		t.Fatal(err)
	}
	back, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := back.At(8, 8).RGBA()
	if r>>8 < 250 || g>>8 < 250 || b>>8 < 250 {
		t.Errorf("transparent pixel encoded as %d,%d,%d, want white", r>>8, g>>8, b>>8)
	}
}
