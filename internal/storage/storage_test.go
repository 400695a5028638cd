package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"analytics/dash board.json": "analytics/dash_board.json",
		"../../etc/passwd":          "etc/passwd",
		"/abs/key.json":             "abs/key.json",
		"weird$*chars.json":         "weirdchars.json",
		"":                          "file",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeKey(in), in)
	}
}

func TestLocalStoragePut(t *testing.T) {
	dir := t.TempDir()
	ls := NewLocalStorage(dir)

	loc, err := ls.Put(context.Background(), "analytics/dashboard_admin1.json", []byte(`{"ok":true}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "analytics", "dashboard_admin1.json"), loc)

	got, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(got))
}

func TestSpacesStoragePut(t *testing.T) {
	t.Run("uploads under the key", func(t *testing.T) {
		fake := &fakeS3{}
		ss := newSpacesStorage(fake, "exports", "https://cdn.example.com/")

		loc, err := ss.Put(context.Background(), "analytics/d.json", []byte("{}"), "application/json")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/analytics/d.json", loc)
		assert.Equal(t, "exports", aws.StringValue(fake.input.Bucket))
		assert.Equal(t, "application/json", aws.StringValue(fake.input.ContentType))
		assert.Equal(t, "{}", string(fake.body))
	})

	t.Run("upload failure", func(t *testing.T) {
		ss := newSpacesStorage(&fakeS3{err: errors.New("denied")}, "exports", "https://cdn.example.com")

		_, err := ss.Put(context.Background(), "k.json", []byte("{}"), "")
		assert.Error(t, err)
	})
}
