package screenersource

import (
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"screener-service/internal/app/contracts"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/exceptions"

	"github.com/minio/minio-go/v7"
)

type minioSource struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioSource reads <prefix>/<screenerType>.json objects from bucket.
func NewMinioSource(client *minio.Client, bucket, prefix string) contracts.ScreenerSource {
	return &minioSource{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (s *minioSource) Name() string {
	return constvars.ScreenerSourceMinio
}

func (s *minioSource) objectName(screenerType string) string {
	return path.Join(s.prefix, screenerType+schemaExtension)
}

func (s *minioSource) Fetch(ctx context.Context, screenerType string) ([]byte, error) {
	objectName := s.objectName(screenerType)
	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate(err, screenerType, objectName)
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.translate(err, screenerType, objectName)
	}
	return raw, nil
}

func (s *minioSource) List(ctx context.Context) ([]string, error) {
	prefix := s.prefix
	if prefix != "" {
		prefix += "/"
	}

	var types []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, exceptions.ErrScreenerSourceRead(obj.Err, s.Name())
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if strings.Contains(name, "/") || !strings.HasSuffix(name, schemaExtension) {
			continue
		}
		types = append(types, strings.TrimSuffix(name, schemaExtension))
	}
	sort.Strings(types)
	return types, nil
}

func (s *minioSource) translate(err error, screenerType, objectName string) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return notFound(screenerType, s.Name())
	}
	return exceptions.ErrMinioGetObject(err, objectName, s.bucket)
}
