// Package s3 stores each session's conversation as a JSON object under
// <session_id>.json in the configured bucket. Any S3-compatible store
// works via the endpoint override.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"

	"github.com/oncobrief/oncobrief/internal/profile"
	"github.com/oncobrief/oncobrief/store"
)

type Driver struct {
	client *awss3.Client
	bucket string
}

func NewDriver(ctx context.Context, p *profile.Profile) (*Driver, error) {
	if p.S3Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if p.S3Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(p.S3Region))
	}
	if p.S3AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(p.S3AccessKey, p.S3SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS configuration")
	}

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if p.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(p.S3Endpoint)
			// Path-style addressing for MinIO and friends.
			o.UsePathStyle = true
		}
	})

	return &Driver{client: client, bucket: p.S3Bucket}, nil
}

func (d *Driver) LoadConversation(ctx context.Context, sessionID string) ([]store.Message, error) {
	key := store.ConversationObjectName(sessionID)
	output, err := d.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		// A session that has never been saved is an empty history, not a fault.
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return []store.Message{}, nil
		}
		return nil, errors.Wrapf(err, "failed to get object %s", key)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read object %s", key)
	}
	var messages []store.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, errors.Wrapf(err, "malformed conversation object %s", key)
	}
	return messages, nil
}

func (d *Driver) SaveConversation(ctx context.Context, sessionID string, messages []store.Message) error {
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal conversation")
	}
	key := store.ConversationObjectName(sessionID)
	_, err = d.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to put object %s", key)
	}
	return nil
}

func (*Driver) Close() error {
	return nil
}
