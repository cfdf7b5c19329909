package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minioConfig() Config {
	return Config{
		Region:    "us-east-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Endpoint:  "http://127.0.0.1:9000",
		Bucket:    "smartcart",
	}
}

// A pré-assinatura é local: nenhuma chamada de rede é feita.
func TestPresignPut_SignsLocally(t *testing.T) {
	images, err := NewS3Images(context.Background(), minioConfig())
	require.NoError(t, err)

	raw, expires, err := images.PresignPut(context.Background(), "products/1/a.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, PresignExpiry, expires)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/smartcart/products/1/a.png", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}

func TestNewS3Images_Errors(t *testing.T) {
	_, err := NewS3Images(context.Background(), Config{Region: "us-east-1"})
	assert.Error(t, err)

	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("sem credenciais")
	}

	_, err = NewS3Images(context.Background(), minioConfig())
	assert.ErrorContains(t, err, "sem credenciais")
}

func TestPresignPut_WrapsError(t *testing.T) {
	images, err := NewS3Images(context.Background(), minioConfig())
	require.NoError(t, err)

	orig := presignPut
	t.Cleanup(func() { presignPut = orig })
	presignPut = func(context.Context, *s3.PresignClient, *s3.PutObjectInput, time.Duration) (string, error) {
		return "", errors.New("boom")
	}

	_, _, err = images.PresignPut(context.Background(), "k", "image/png")
	assert.ErrorContains(t, err, "boom")
}

func TestPublicURL(t *testing.T) {
	cfg := minioConfig()
	assert.Equal(t, "http://127.0.0.1:9000/smartcart", publicBase(cfg))

	cfg.PublicBaseURL = "https://cdn.example.com/"
	images, err := NewS3Images(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/products/1/a.png", images.PublicURL("/products/1/a.png"))

	defaultAWS := Config{Region: "eu-west-1", Bucket: "imgs"}
	assert.True(t, strings.HasPrefix(publicBase(defaultAWS), "https://imgs.s3.eu-west-1.amazonaws.com"))
}
