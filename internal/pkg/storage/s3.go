package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/qs3c/portfolio_server/config"
)

// S3 兼容对象存储（AWS S3、MinIO 等）
type S3 struct {
	opts      *config.S3Config
	s3cli     *s3.Client
	s3presign *s3.PresignClient
}

func NewS3(ctx context.Context, opts *config.S3Config) (*S3, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		),
	}
	if opts.URL != "" {
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{URL: opts.URL}, nil
				},
			),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	s3cli := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = opts.Region
		o.UsePathStyle = opts.URL != ""
	})
	return &S3{
		opts:      opts,
		s3cli:     s3cli,
		s3presign: s3.NewPresignClient(s3cli),
	}, nil
}

func (m *S3) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	// 签名需要可重读的 body
	if _, ok := body.(io.ReadSeeker); !ok {
		data, err := io.ReadAll(body)
		if err != nil {
			return "", err
		}
		body = bytes.NewReader(data)
	}

	_, err := m.s3cli.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.opts.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return m.URL(key), nil
}

// SignPut get upload url for a given object
func (m *S3) SignPut(ctx context.Context, key, contentType string, expire time.Duration) (*SignedRequest, error) {
	object := &s3.PutObjectInput{
		Bucket:      aws.String(m.opts.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	presignresult, err := m.s3presign.PresignPutObject(ctx, object, s3.WithPresignExpires(expire))
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	for k, v := range presignresult.SignedHeader {
		if strings.EqualFold(k, "host") {
			continue
		}
		header[k] = v
	}
	return &SignedRequest{
		URL:     presignresult.URL,
		Method:  presignresult.Method,
		Headers: header,
		Expires: time.Now().Add(expire),
	}, nil
}

func (m *S3) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	out, err := m.s3cli.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(m.opts.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NotFound") {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	info := &ObjectInfo{Key: key, Size: out.ContentLength}
	if out.LastModified != nil {
		info.LastModified = *out.LastModified
	}
	return info, nil
}

func (m *S3) Delete(ctx context.Context, key string) error {
	_, err := m.s3cli.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.opts.Bucket),
		Key:    aws.String(key),
	})
	return err
}

func (m *S3) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(m.s3cli, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.opts.Bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			info := ObjectInfo{Key: aws.ToString(obj.Key), Size: obj.Size}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			objects = append(objects, info)
		}
	}
	return objects, nil
}

func (m *S3) URL(key string) string {
	if m.opts.PublicURL != "" {
		return strings.TrimSuffix(m.opts.PublicURL, "/") + "/" + key
	}
	if m.opts.URL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(m.opts.URL, "/"), m.opts.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.opts.Bucket, m.opts.Region, key)
}
