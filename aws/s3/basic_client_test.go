package s3

import (
	"bytes"
	"io/ioutil"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type fakeS3API struct {
	s3iface.S3API
	objects map[string][]byte
	lastKey string
}

func (f *fakeS3API) GetObject(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	f.lastKey = aws.StringValue(in.Key)
	data, ok := f.objects[aws.StringValue(in.Bucket)+"/"+f.lastKey]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "not found", nil)
	}
	return &s3.GetObjectOutput{Body: ioutil.NopCloser(bytes.NewReader(data))}, nil
}

func TestBasicClientGet(t *testing.T) {
	api := &fakeS3API{objects: map[string][]byte{"bucket/maps/a.csv": []byte("patno,cdm_patno\n")}}
	g := NewGetterWithAPI("bucket", api)
	data, err := g.Get("maps/a.csv")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "patno,cdm_patno\n" {
		t.Fatalf("unexpected data %q", data)
	}
	if _, err = g.Get("missing.csv"); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound; got %v", err)
	}
}
