package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/qs3c/portfolio_server/config"
)

// OSS 阿里云对象存储
type OSS struct {
	client     *oss.Client
	bucket     *oss.Bucket
	bucketName string
	cdnDomain  string
}

func NewOSS(cfg *config.OSSConfig) (*OSS, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &OSS{
		client:     client,
		bucket:     bucket,
		bucketName: cfg.BucketName,
		cdnDomain:  cfg.CDNDomain,
	}, nil
}

// Put 上传文件
func (c *OSS) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	err := c.bucket.PutObject(key, body,
		oss.ContentType(contentType),
		oss.ContentLength(size),
		oss.WithContext(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return c.URL(key), nil
}

// SignPut 生成带签名的 PUT 地址，客户端需携带相同的 Content-Type
func (c *OSS) SignPut(ctx context.Context, key, contentType string, expire time.Duration) (*SignedRequest, error) {
	signedURL, err := c.bucket.SignURL(key, oss.HTTPPut, int64(expire.Seconds()), oss.ContentType(contentType))
	if err != nil {
		return nil, fmt.Errorf("failed to generate signed URL: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", contentType)
	return &SignedRequest{
		URL:     signedURL,
		Method:  http.MethodPut,
		Headers: header,
		Expires: time.Now().Add(expire),
	}, nil
}

func (c *OSS) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	exists, err := c.bucket.IsObjectExist(key, oss.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrObjectNotFound
	}

	meta, err := c.bucket.GetObjectMeta(key, oss.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	info := &ObjectInfo{Key: key}
	fmt.Sscan(meta.Get("Content-Length"), &info.Size)
	if t, err := http.ParseTime(meta.Get("Last-Modified")); err == nil {
		info.LastModified = t
	}
	return info, nil
}

// Delete 删除文件
func (c *OSS) Delete(ctx context.Context, key string) error {
	if err := c.bucket.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (c *OSS) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	token := ""
	for {
		result, err := c.bucket.ListObjectsV2(
			oss.Prefix(prefix),
			oss.ContinuationToken(token),
			oss.MaxKeys(1000),
			oss.WithContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range result.Objects {
			objects = append(objects, ObjectInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
		}
		if !result.IsTruncated {
			return objects, nil
		}
		token = result.NextContinuationToken
	}
}

// URL 获取文件访问 URL
func (c *OSS) URL(key string) string {
	if c.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.cdnDomain, key)
	}
	endpoint := strings.TrimPrefix(strings.TrimPrefix(c.client.Config.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", c.bucketName, endpoint, key)
}
