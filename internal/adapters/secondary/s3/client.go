package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"sagemaker-deployer/internal/config"
	output "sagemaker-deployer/internal/core/ports/output"
)

// Client stages dataset objects. Large local files go through the multipart
// uploader, copies of small objects through a single PutObject.
type Client struct {
	api        s3iface.S3API
	uploader   *s3manager.Uploader
	downloader *s3manager.Downloader
}

var _ output.ObjectStore = (*Client)(nil)

func NewClient(cfg *config.AWSConfig) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:                        aws.String(cfg.Region),
		CredentialsChainVerboseErrors: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return NewClientWithAPI(s3.New(sess)), nil
}

func NewClientWithAPI(api s3iface.S3API) *Client {
	return &Client{
		api:        api,
		uploader:   s3manager.NewUploaderWithClient(api),
		downloader: s3manager.NewDownloaderWithClient(api),
	}
}

func (c *Client) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	buf := aws.WriteAtBuffer{}
	_, err := c.downloader.DownloadWithContext(ctx, &buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download s3://%s/%s: %w", bucket, key, err)
	}
	return buf.Bytes(), nil
}

func (c *Client) Upload(ctx context.Context, bucket, key string, body io.Reader) error {
	_, err := c.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (c *Client) Put(ctx context.Context, bucket, key string, data []byte) error {
	_, err := c.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
