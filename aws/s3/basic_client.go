package s3

import (
	"io/ioutil"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// NewGetter returns a Getter for objects in bucket using the default AWS credential chain.
func NewGetter(bucket, region string) (Getter, error) {
	awsConfig := aws.NewConfig()
	awsConfig.Region = aws.String(region)
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}
	return NewGetterWithAPI(bucket, s3.New(sess)), nil
}

// NewGetterWithAPI returns a Getter that uses the supplied S3 API implementation.
func NewGetterWithAPI(bucket string, api s3iface.S3API) Getter {
	return &basicClient{
		bucket: bucket,
		api:    api,
	}
}

type basicClient struct {
	bucket string
	api    s3iface.S3API
}

func (s *basicClient) Get(key string) ([]byte, error) {
	res, err := s.api.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if awsErr, ok := err.(awserr.Error); ok && awsErr.Code() == s3.ErrCodeNoSuchKey {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	defer res.Body.Close()
	return ioutil.ReadAll(res.Body)
}
