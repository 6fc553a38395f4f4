package storage

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"
)

const (
	fetchTimeout     = 10 * time.Second
	fetchConcurrency = 8
)

// ObjectStore 批量读取对象存储。keys 不存在的条目从结果里缺失，不算错误。
type ObjectStore interface {
	FetchMany(ctx context.Context, keys []string) (map[string][]byte, error)
}

type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3Store struct {
	api    s3API
	bucket string
}

func NewS3Store(ctx context.Context, bucket string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &S3Store{api: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// FetchMany 一次调用内有界并发下载，整体带超时；对调用方是单次往返
func (s *S3Store) FetchMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	var mu sync.Mutex
	out := make(map[string][]byte, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			obj, err := s.api.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				var nsk *types.NoSuchKey
				if errors.As(err, &nsk) {
					// 不存在的 key 不进结果
					return nil
				}
				return err
			}
			defer obj.Body.Close()

			b, err := io.ReadAll(obj.Body)
			if err != nil {
				return err
			}
			mu.Lock()
			out[key] = b
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
