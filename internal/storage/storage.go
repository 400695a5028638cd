package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/rs/zerolog/log"
)

// Storage archives exported files and returns where they landed.
type Storage interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type LocalStorage struct {
	baseDir string
}

type SpacesStorage struct {
	client s3iface.S3API
	bucket string
	cdnURL string
}

func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

func NewSpacesStorage(endpoint, region, bucket, cdnURL, accessKey, secretKey string) (*SpacesStorage, error) {
	config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(false),
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return newSpacesStorage(s3.New(sess), bucket, cdnURL), nil
}

func newSpacesStorage(client s3iface.S3API, bucket, cdnURL string) *SpacesStorage {
	return &SpacesStorage{client: client, bucket: bucket, cdnURL: cdnURL}
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_./-]`)

// normalizeKey keeps keys relative and free of spaces and odd characters.
func normalizeKey(key string) string {
	key = strings.ReplaceAll(key, " ", "_")
	key = unsafeKeyChars.ReplaceAllString(key, "")
	key = path.Clean("/" + key)
	key = strings.TrimPrefix(key, "/")
	if key == "" || key == "." {
		key = "file"
	}
	return key
}

func (ls *LocalStorage) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	key = normalizeKey(key)
	dest := filepath.Join(ls.baseDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(dest, body, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	log.Debug().Str("path", dest).Int("bytes", len(body)).Msg("export written")
	return dest, nil
}

func (ss *SpacesStorage) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	key = normalizeKey(key)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := ss.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(ss.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		ACL:         aws.String("private"),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to upload export to Spaces")
		return "", fmt.Errorf("failed to upload to Spaces: %w", err)
	}

	return fmt.Sprintf("%s/%s", strings.TrimSuffix(ss.cdnURL, "/"), key), nil
}
