package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeGetter struct {
	body []byte
	err  error
	key  string
}

func (f *fakeGetter) GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.key = *in.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func TestDownload(t *testing.T) {
	g := &fakeGetter{body: []byte("png-bytes")}
	r := &R2Client{client: g, bucket: "menu"}

	data, err := r.Download(context.Background(), "/images/jollof.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected body %q", data)
	}
	if g.key != "images/jollof.png" {
		t.Fatalf("leading slash not stripped: %q", g.key)
	}
}

func TestDownloadMissingKey(t *testing.T) {
	r := &R2Client{client: &fakeGetter{err: &types.NoSuchKey{}}, bucket: "menu"}

	_, err := r.Download(context.Background(), "nope.png")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDownloadTooLarge(t *testing.T) {
	r := &R2Client{client: &fakeGetter{body: make([]byte, MaxObjectSize+1)}, bucket: "menu"}

	_, err := r.Download(context.Background(), "huge.png")
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestPublicURL(t *testing.T) {
	r := &R2Client{baseURL: "https://cdn.example.com"}
	if got := r.PublicURL("/images/a.png"); got != "https://cdn.example.com/images/a.png" {
		t.Fatalf("unexpected url %q", got)
	}
}
