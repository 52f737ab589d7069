package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
)

// Client S3 兼容对象存储（MinIO / AWS S3）
type Client struct {
	s3        *s3.Client
	bucket    string
	publicURL string
}

func NewClient(ctx context.Context, cfg *config.StorageConfig) (*Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO 需要 path-style
			o.UsePathStyle = true
		}
	})

	return &Client{
		s3:        client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// ObjectKey 生成对象路径：<prefix>/<yyyy/mm>/<uuid><ext>
func ObjectKey(prefix, ext string) string {
	return path.Join(prefix, time.Now().UTC().Format("2006/01"), uuid.NewString()+strings.ToLower(ext))
}

// Upload 上传对象并返回公开访问地址
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return c.URL(key), nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	return err
}

// URL 对象的公开地址
func (c *Client) URL(key string) string {
	return c.publicURL + "/" + key
}

// KeyFromURL 从公开地址还原对象 key，不属于本存储时返回空串
func (c *Client) KeyFromURL(url string) string {
	prefix := c.publicURL + "/"
	if c.publicURL == "" || !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}
