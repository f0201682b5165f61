package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubS3(t *testing.T) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := putObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		putObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func TestNewS3Storage_AppliesConfig(t *testing.T) {
	stubS3(t)

	var lo awsconfig.LoadOptions
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	_, err := NewS3Storage(context.Background(), S3Config{
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Bucket:       "complaints",
		Region:       "eu-central-1",
		BaseEndpoint: "http://127.0.0.1:9000",
	})
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1", lo.Region)
	assert.NotNil(t, lo.Credentials)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Storage_LoadError(t *testing.T) {
	stubS3(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	_, err := NewS3Storage(context.Background(), S3Config{Bucket: "b"})
	assert.ErrorContains(t, err, "no creds")
}

func TestS3Storage_Save(t *testing.T) {
	stubS3(t)

	var got *s3.PutObjectInput
	var body string
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		got = in
		b, _ := io.ReadAll(in.Body)
		body = string(b)
		return &s3.PutObjectOutput{}, nil
	}

	st, err := NewS3Storage(context.Background(), S3Config{Bucket: "complaints", Region: "us-east-1"})
	require.NoError(t, err)
	st.now = func() time.Time { return time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC) }

	key, err := st.Save(context.Background(), "1-x-cat.png", "image/png", strings.NewReader("data"))
	require.NoError(t, err)

	assert.Equal(t, "complaints/2024/3/9/1-x-cat.png", key)
	require.NotNil(t, got)
	assert.Equal(t, "complaints", aws.ToString(got.Bucket))
	assert.Equal(t, key, aws.ToString(got.Key))
	assert.Equal(t, "image/png", aws.ToString(got.ContentType))
	assert.Equal(t, "data", body)
}

func TestS3Storage_SaveError(t *testing.T) {
	stubS3(t)
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("access denied")
	}

	st, err := NewS3Storage(context.Background(), S3Config{Bucket: "complaints"})
	require.NoError(t, err)

	_, err = st.Save(context.Background(), "n.png", "", strings.NewReader("x"))
	assert.ErrorContains(t, err, "access denied")
}

func TestS3Storage_URL(t *testing.T) {
	stubS3(t)

	var expires time.Duration
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		expires = po.Expires
		return &v4.PresignedHTTPRequest{URL: "https://s3/" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key) + "?sig"}, nil
	}

	st, err := NewS3Storage(context.Background(), S3Config{Bucket: "complaints"})
	require.NoError(t, err)

	u, err := st.URL(context.Background(), "complaints/2024/3/9/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://s3/complaints/complaints/2024/3/9/a.png?sig", u)
	assert.Equal(t, 15*time.Minute, expires)
}

func TestS3Storage_URLError(t *testing.T) {
	stubS3(t)
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign failed")
	}

	st, err := NewS3Storage(context.Background(), S3Config{Bucket: "complaints"})
	require.NoError(t, err)

	_, err = st.URL(context.Background(), "k")
	assert.ErrorContains(t, err, "presign failed")
}
