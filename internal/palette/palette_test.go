package palette

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encode(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRepresentativePicksDominantColour(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	orange := color.RGBA{R: 0xe0, G: 0x70, B: 0x10, A: 0xff}
	green := color.RGBA{R: 0x20, G: 0xa0, B: 0x40, A: 0xff}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if x < 7 {
				img.Set(x, y, orange)
			} else {
				img.Set(x, y, green)
			}
		}
	}

	got, err := Representative(encode(t, img))
	if err != nil {
		t.Fatal(err)
	}
	if got != "#e07010" {
		t.Fatalf("expected #e07010, got %s", got)
	}
}

func TestRepresentativeIgnoresWhiteBackground(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.White)
		}
	}
	img.Set(5, 5, color.RGBA{R: 0xc0, G: 0x20, B: 0x20, A: 0xff})

	got, err := Representative(encode(t, img))
	if err != nil {
		t.Fatal(err)
	}
	if got != "#c02020" {
		t.Fatalf("expected #c02020, got %s", got)
	}
}

func TestRepresentativeAllWhite(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.White)
		}
	}

	got, err := Representative(encode(t, img))
	if err != nil {
		t.Fatal(err)
	}
	if got != "#ffffff" {
		t.Fatalf("expected #ffffff, got %s", got)
	}
}

func TestRepresentativeRejectsGarbage(t *testing.T) {
	if _, err := Representative([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRepresentativeTransparent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	if _, err := Representative(encode(t, img)); err != ErrEmptyImage {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
}

type countingSource struct {
	data  []byte
	calls int
}

func (c *countingSource) Download(ctx context.Context, key string) ([]byte, error) {
	c.calls++
	return c.data, nil
}

func TestServiceCaches(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.RGBA{R: 0x40, G: 0x80, B: 0xc0, A: 0xff})
		}
	}
	src := &countingSource{data: encode(t, img)}
	svc := NewService(src)

	for i := 0; i < 2; i++ {
		got, err := svc.Color(context.Background(), "/menu/a.png")
		if err != nil {
			t.Fatal(err)
		}
		if got != "#4080c0" {
			t.Fatalf("expected #4080c0, got %s", got)
		}
	}
	if src.calls != 1 {
		t.Fatalf("expected one download, got %d", src.calls)
	}
}
