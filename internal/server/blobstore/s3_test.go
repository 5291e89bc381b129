package blobstore

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	sc "github.com/graviox/roundcube-carddav/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects   map[string][]byte
	pageSize  int
	putErr    error
	listErr   error
	deleteErr error
	deletes   int
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, _ := io.ReadAll(in.Body)
	f.objects[*in.Key] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for k := range f.objects {
		if len(k) >= len(*in.Prefix) && k[:len(*in.Prefix)] == *in.Prefix {
			keys = append(keys, k)
		}
	}
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	if f.pageSize > 0 && len(keys) > f.pageSize {
		keys = keys[:f.pageSize]
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String("next")
	}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deletes++
	for _, id := range in.Delete.Objects {
		delete(f.objects, *id.Key)
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func TestPut(t *testing.T) {
	api := &fakeS3{objects: map[string][]byte{}}
	a := &S3Archive{api: api, bucket: "vcards"}

	require.NoError(t, a.Put(context.Background(), "sources/x/1.vcf", []byte("BEGIN:VCARD")))
	assert.Equal(t, []byte("BEGIN:VCARD"), api.objects["sources/x/1.vcf"])

	api.putErr = errors.New("denied")
	assert.Error(t, a.Put(context.Background(), "sources/x/2.vcf", nil))
}

func TestDeletePrefix_Paginates(t *testing.T) {
	api := &fakeS3{pageSize: 2, objects: map[string][]byte{
		"sources/a/1.vcf": nil, "sources/a/2.vcf": nil, "sources/a/3.vcf": nil,
		"sources/b/1.vcf": nil,
	}}
	a := &S3Archive{api: api, bucket: "vcards"}

	require.NoError(t, a.DeletePrefix(context.Background(), "sources/a/"))

	assert.Equal(t, map[string][]byte{"sources/b/1.vcf": nil}, api.objects)
	assert.Equal(t, 2, api.deletes)
}

func TestDeletePrefix_Errors(t *testing.T) {
	a := &S3Archive{api: &fakeS3{objects: map[string][]byte{}, listErr: errors.New("list")}, bucket: "b"}
	assert.Error(t, a.DeletePrefix(context.Background(), "p/"))

	a = &S3Archive{api: &fakeS3{objects: map[string][]byte{"p/1": nil}, deleteErr: errors.New("del")}, bucket: "b"}
	assert.Error(t, a.DeletePrefix(context.Background(), "p/"))
}

func TestNewS3Archive_AppliesConfig(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-central-1", lo.Region)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	cfg := &sc.Config{S3Region: "eu-central-1", S3Bucket: "vcards", S3BaseEndpoint: "http://127.0.0.1:9000"}
	a, err := NewS3Archive(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "vcards", a.bucket)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Archive_LoadError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	_, err := NewS3Archive(context.Background(), &sc.Config{})
	assert.Error(t, err)
}
