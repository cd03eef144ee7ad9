// Package assets derives presentation media for stored entries: it mirrors
// extracted media into owned object storage and renders the share composition
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/viper"
)

// Timeout for media downloads
const requestTimeout = 30 * time.Second

// Error returned when object storage is unreachable
var ErrUpload = errors.New("storage upload failed")

// Error returned when the headless-browser render fails
var ErrRender = errors.New("share render failed")

// Uploader copies derived assets into owned object storage
type Uploader struct {
	ctx    context.Context
	log    *log.Logger
	s3     *s3.Client
	client *http.Client
	bucket string
	cdnURL string
}

// Init the object
// Credentials come from the default AWS provider chain (env vars in production)
func (u *Uploader) Init(ctx context.Context) error {
	u.ctx = ctx

	// Init the logger
	u.log = log.New(os.Stdout, "assets: ", log.Ldate|log.Ltime|log.LUTC)

	// Init the HTTP client
	u.client = &http.Client{
		Timeout: requestTimeout,
	}

	u.bucket = viper.GetString("s3.bucket")
	u.cdnURL = viper.GetString("cdn_url")
	if u.bucket == "" || u.cdnURL == "" {
		return fmt.Errorf("%w: s3.bucket and cdn_url must be configured", ErrUpload)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(viper.GetString("s3.region")),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpload, err)
	}
	u.s3 = s3.NewFromConfig(cfg)

	return nil
}

// Upload stores body under key and returns the stable public URL for it
func (u *Uploader) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := u.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	return publicURL(u.cdnURL, key), nil
}

func publicURL(cdnURL string, key string) string {
	return strings.TrimSuffix(cdnURL, "/") + "/" + key
}
