package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// MaxObjectSize caps downloads; menu images are small.
const MaxObjectSize = 8 << 20

var (
	ErrNotFound = errors.New("object not found")
	ErrTooLarge = errors.New("object too large")
)

type R2Config struct {
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Bucket        string `yaml:"bucket"`
	PublicBaseURL string `yaml:"public_base_url"`
}

// Enabled reports whether enough is configured to reach the bucket.
func (c R2Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// getter is the part of *s3.Client the R2 client calls.
type getter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type R2Client struct {
	client  getter
	bucket  string
	baseURL string
}

func NewR2Client(ctx context.Context, rc R2Config) (*R2Client, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				rc.AccessKey,
				rc.SecretKey,
				"",
			),
		),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(rc.Endpoint)
		o.UsePathStyle = true
	})

	return &R2Client{
		client:  client,
		bucket:  rc.Bucket,
		baseURL: strings.TrimRight(rc.PublicBaseURL, "/"),
	}, nil
}

// Download reads a whole object, refusing anything over MaxObjectSize.
func (r *R2Client) Download(ctx context.Context, key string) ([]byte, error) {
	key = strings.TrimPrefix(key, "/")
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &r.bucket,
		Key:    &key,
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, MaxObjectSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxObjectSize {
		return nil, fmt.Errorf("%s: %w", key, ErrTooLarge)
	}
	return data, nil
}

// PublicURL is where browsers fetch the object.
func (r *R2Client) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", r.baseURL, strings.TrimPrefix(key, "/"))
}
