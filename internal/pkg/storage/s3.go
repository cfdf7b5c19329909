// Package storage gera URLs pré-assinadas para o upload das imagens de produto
// em um bucket S3 (ou compatível, como MinIO).
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignExpiry é a validade da URL de upload.
const PresignExpiry = 15 * time.Minute

// Pontos de extensão substituídos nos testes.
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
	presignPut = func(ctx context.Context, c *s3.PresignClient, in *s3.PutObjectInput, expires time.Duration) (string, error) {
		req, err := c.PresignPutObject(ctx, in, s3.WithPresignExpires(expires))
		if err != nil {
			return "", err
		}
		return req.URL, nil
	}
)

// Config são os dados de acesso ao bucket.
type Config struct {
	Region        string
	AccessKey     string
	SecretKey     string
	Endpoint      string
	Bucket        string
	PublicBaseURL string
}

// S3Images implementa o armazenamento de imagens de produto.
type S3Images struct {
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

// NewS3Images monta o cliente de pré-assinatura. Endpoint vazio usa o endpoint padrão da AWS.
func NewS3Images(ctx context.Context, cfg Config) (*S3Images, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, errors.New("storage: bucket e região são obrigatórios")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: falha ao carregar configuração AWS: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Images{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		publicURL: publicBase(cfg),
	}, nil
}

// PresignPut gera a URL de PUT para a chave informada.
func (s *S3Images) PresignPut(ctx context.Context, key, contentType string) (string, time.Duration, error) {
	url, err := presignPut(ctx, s.presigner, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, PresignExpiry)
	if err != nil {
		return "", 0, fmt.Errorf("storage: falha ao pré-assinar %s: %w", key, err)
	}
	return url, PresignExpiry, nil
}

// PublicURL devolve o endereço público do objeto.
func (s *S3Images) PublicURL(key string) string {
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}

func publicBase(cfg Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}
