package s3

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

const urlScheme = "s3"

// AwsS3Object locates a single object in a bucket.
type AwsS3Object struct {
	Bucket string `errorTxt:"bucket name" mandatory:"yes"`
	Key    string `errorTxt:"object key" mandatory:"yes"`
	Region string `errorTxt:"bucket region" mandatory:"yes"`
}

func (o AwsS3Object) String() string {
	return fmt.Sprintf("%v://%v/%v", urlScheme, o.Bucket, o.Key)
}

// IsS3URL returns true if location starts with s3://
func IsS3URL(location string) bool {
	return strings.HasPrefix(strings.ToLower(location), urlScheme+"://")
}

// ParseURL expects location to be of the form s3://<bucket>/<key>
// If region is empty the AWS_REGION or AWS_DEFAULT_REGION environment variables are used.
func ParseURL(location string, region string) (retval AwsS3Object, err error) {
	s3url, err := url.Parse(location)
	if err != nil {
		return retval, fmt.Errorf("error parsing S3 URL: %v", err)
	}
	if s3url.Scheme != urlScheme {
		return retval, fmt.Errorf("expected S3 URL scheme %q but got %q", urlScheme, s3url.Scheme)
	}
	retval.Bucket = s3url.Host
	if retval.Bucket == "" {
		return retval, fmt.Errorf("S3 URL %q is missing the bucket name", location)
	}
	retval.Key = strings.TrimPrefix(s3url.Path, "/")
	if retval.Key == "" {
		return retval, fmt.Errorf("S3 URL %q is missing the object key", location)
	}
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		return retval, fmt.Errorf("value expected for bucket region: set --s3-region or AWS_REGION")
	}
	retval.Region = region
	return
}
