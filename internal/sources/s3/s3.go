// Package s3 reads the donor JSON documents from an S3 bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"charity/internal/core"
	"charity/internal/sources"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the subset of the S3 API the store needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// Store reads donors.json and silent-donations.json from a bucket.
type Store struct {
	api       ObjectGetter
	bucket    string
	donorsKey string
	silentKey string
}

var _ sources.Source = (*Store)(nil)

// Options names the bucket and object keys. Empty keys use the canonical file names.
type Options struct {
	Bucket    string
	Region    string
	DonorsKey string
	SilentKey string
}

// New loads the default AWS credential chain for the given region.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("missing S3 bucket")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithClient(awss3.NewFromConfig(cfg), opts), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(api ObjectGetter, opts Options) *Store {
	if opts.DonorsKey == "" {
		opts.DonorsKey = sources.DonorsFile
	}
	if opts.SilentKey == "" {
		opts.SilentKey = sources.SilentFile
	}
	return &Store{api: api, bucket: opts.Bucket, donorsKey: opts.DonorsKey, silentKey: opts.SilentKey}
}

func (s *Store) ReadDonors(ctx context.Context) ([]core.Donor, error) {
	body, err := s.get(ctx, s.donorsKey)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return sources.DecodeDonors(body)
}

func (s *Store) ReadSilent(ctx context.Context) ([]core.Money, error) {
	body, err := s.get(ctx, s.silentKey)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return sources.DecodeSilent(body)
}

func (s *Store) get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}
