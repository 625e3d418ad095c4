package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"wordfreq/pkg/contract"
)

// Options 为对象存储 Writer 的配置。
// access_key/secret_key 留空时读取 AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY。
type Options struct {
	Endpoint  string `json:"endpoint"`
	Region    string `json:"region"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	UseSSL    bool   `json:"use_ssl"`
	// Prefix: 对象键前缀，例如 "runs/2024-05-01"。
	Prefix string `json:"prefix"`
}

// S3 通过 minio-go 以流式 PutObject 上传频率表。
type S3 struct {
	client *minio.Client
	bucket string
	region string
	prefix string

	initMu   sync.Mutex
	initDone bool
	initErr  error
}

var _ contract.Writer = (*S3)(nil)

// New 校验配置并创建客户端；不发起网络请求。
func New(opts *Options) (*S3, error) {
	if opts == nil {
		return nil, fmt.Errorf("%w: s3 options required", contract.ErrInvalidInput)
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("%w: s3 endpoint is required", contract.ErrInvalidInput)
	}
	access := firstNonEmpty(opts.AccessKey, os.Getenv("AWS_ACCESS_KEY_ID"))
	secret := firstNonEmpty(opts.SecretKey, os.Getenv("AWS_SECRET_ACCESS_KEY"))
	if access == "" || secret == "" {
		return nil, fmt.Errorf("%w: s3 access key and secret key are required", contract.ErrInvalidInput)
	}
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is required", contract.ErrInvalidInput)
	}
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: opts.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3{
		client: client,
		bucket: bucket,
		region: region,
		prefix: strings.Trim(strings.TrimSpace(opts.Prefix), "/"),
	}, nil
}

func (s *S3) ensureBucket(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.initDone {
		return s.initErr
	}
	err := s.checkBucket(ctx)
	// ctx 取消/超时导致的失败不记录，下次调用重试
	if err != nil && ctx.Err() != nil {
		return err
	}
	s.initDone, s.initErr = true, err
	return err
}

func (s *S3) checkBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil || exists {
		return err
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
}

// Write 以未知长度流式上传（minio 内部分片）。
func (s *S3) Write(ctx context.Context, id contract.ArtifactID, r io.Reader) error {
	key, err := s.objectKey(id)
	if err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, r, -1, minio.PutObjectOptions{
		ContentType: contentType(id),
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *S3) objectKey(id contract.ArtifactID) (string, error) {
	name := strings.TrimLeft(string(contract.NormalizeFileID(string(id))), "/")
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, "../") {
		return "", contract.ErrPathInvalid
	}
	if s.prefix == "" {
		return name, nil
	}
	return path.Join(s.prefix, name), nil
}

func contentType(id contract.ArtifactID) string {
	switch contract.LogicalExt(id) {
	case ".tsv":
		return "text/tab-separated-values"
	case ".jsonl":
		return "application/x-ndjson"
	default:
		return "application/octet-stream"
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
