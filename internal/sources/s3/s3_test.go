package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"charity/internal/sources"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeGetter struct {
	objects map[string]string
	keys    []string
}

func (f *fakeGetter) GetObject(_ context.Context, in *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.keys = append(f.keys, aws.ToString(in.Bucket)+"/"+key)
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestStoreReadsBothObjects(t *testing.T) {
	fake := &fakeGetter{objects: map[string]string{
		sources.DonorsFile: `[{"name":"Ayesha","amount":15000,"date":"2024-01-15","anonymous":false}]`,
		"custom/silent.json": `{"silentDonations":[500,250]}`,
	}}
	store := NewWithClient(fake, Options{Bucket: "site", SilentKey: "custom/silent.json"})

	donors, err := store.ReadDonors(context.Background())
	if err != nil {
		t.Fatalf("ReadDonors: %v", err)
	}
	if len(donors) != 1 || donors[0].Name != "Ayesha" {
		t.Fatalf("unexpected donors: %+v", donors)
	}
	silent, err := store.ReadSilent(context.Background())
	if err != nil {
		t.Fatalf("ReadSilent: %v", err)
	}
	if len(silent) != 2 {
		t.Fatalf("expected 2 silent amounts, got %d", len(silent))
	}
	if fake.keys[0] != "site/donors.json" || fake.keys[1] != "site/custom/silent.json" {
		t.Fatalf("unexpected keys requested: %v", fake.keys)
	}
}

func TestStoreMissingObject(t *testing.T) {
	store := NewWithClient(&fakeGetter{}, Options{Bucket: "site"})
	if _, err := store.ReadDonors(context.Background()); err == nil {
		t.Fatalf("expected error for missing object")
	}
}
