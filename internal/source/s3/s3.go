package s3

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/text/encoding"

	"spendboard/internal/source"
)

// Source reads the extracts from one bucket, optionally under a key prefix.
type Source struct {
	client *s3.Client
	bucket string
	prefix string
	files  map[source.Table]string
	enc    encoding.Encoding
}

var (
	_ source.TableReader = (*Source)(nil)
	_ source.Describer   = (*Source)(nil)
)

// Config holds explicit construction parameters. Credentials fall back to
// the default AWS chain when AccessKeyID is empty.
type Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // optional, e.g. MinIO
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
	Files           map[source.Table]string
	Encoding        string
}

func New(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newWithClient(client, cfg)
}

func newWithClient(client *s3.Client, cfg Config) (*Source, error) {
	enc, err := source.Encoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	files := source.DefaultFiles()
	for t, name := range cfg.Files {
		if strings.TrimSpace(name) != "" {
			files[t] = name
		}
	}
	return &Source{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		files:  files,
		enc:    enc,
	}, nil
}

func (s *Source) Describe() string {
	if s.prefix == "" {
		return "s3://" + s.bucket
	}
	return "s3://" + s.bucket + "/" + s.prefix
}

// Key returns the object key a table is read from.
func (s *Source) Key(t source.Table) string {
	name, ok := s.files[t]
	if !ok {
		return ""
	}
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *Source) ReadTable(ctx context.Context, t source.Table) ([][]string, error) {
	key := s.Key(t)
	if key == "" {
		return nil, fmt.Errorf("%w: %s", source.ErrTableNotFound, t)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: s3://%s/%s", source.ErrTableNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	rows, err := source.DecodeCSV(out.Body, s.enc)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, err)
	}
	return rows, nil
}
