// Package upload issues presigned S3 PUT URLs for activity images.
package upload

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// PresignAPI is the subset of s3.PresignClient used here.
type PresignAPI interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Result describes a pending upload.
type Result struct {
	UploadURL   string    `json:"uploadUrl"`
	ObjectURL   string    `json:"objectUrl"`
	Key         string    `json:"key"`
	ContentType string    `json:"contentType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Option applies a configuration option to the Presigner.
type Option func(*Presigner)

// WithPrefix sets the object key prefix.
func WithPrefix(prefix string) Option {
	return func(p *Presigner) {
		p.prefix = strings.Trim(prefix, "/")
	}
}

// WithExpiry sets the presigned URL lifetime.
func WithExpiry(d time.Duration) Option {
	return func(p *Presigner) {
		if d > 0 {
			p.expiry = d
		}
	}
}

// WithClock overrides the time source used for date-based keys.
func WithClock(now func() time.Time) Option {
	return func(p *Presigner) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDGenerator overrides the object name generator.
func WithIDGenerator(gen func() string) Option {
	return func(p *Presigner) {
		if gen != nil {
			p.newID = gen
		}
	}
}

// Presigner builds object keys and presigns PUT requests.
type Presigner struct {
	client PresignAPI
	bucket string
	prefix string
	expiry time.Duration
	now    func() time.Time
	newID  func() string
}

// NewPresigner creates a Presigner for bucket.
func NewPresigner(client PresignAPI, bucket string, opts ...Option) *Presigner {
	p := &Presigner{
		client: client,
		bucket: bucket,
		prefix: "activities",
		expiry: 5 * time.Minute,
		now:    time.Now,
		newID:  func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Presign returns an upload URL for an image named fileName with the
// declared fileType. At least one of them must identify a supported image.
func (p *Presigner) Presign(ctx context.Context, fileName, fileType string) (Result, error) {
	ext, contentType, err := ResolveType(fileName, fileType)
	if err != nil {
		return Result{}, err
	}
	now := p.now().UTC()
	key := path.Join(p.prefix, now.Format("2006/01/02"), p.newID()+ext)

	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPresign, err)
	}
	return Result{
		UploadURL:   req.URL,
		ObjectURL:   fmt.Sprintf("https://%s.s3.amazonaws.com/%s", p.bucket, key),
		Key:         key,
		ContentType: contentType,
		ExpiresAt:   now.Add(p.expiry),
	}, nil
}

// ResolveType picks the object extension and content type. The file name
// extension wins; otherwise the declared MIME type selects it. The content
// type is always the extension's own, and a declared type that disagrees
// with it is rejected.
func ResolveType(fileName, fileType string) (ext, contentType string, err error) {
	fileName = strings.TrimSpace(fileName)
	fileType = strings.ToLower(strings.TrimSpace(fileType))
	if fileName == "" && fileType == "" {
		return "", "", ErrMissingFile
	}

	ext = strings.ToLower(path.Ext(fileName))
	if _, ok := contentTypes[ext]; !ok {
		switch {
		case strings.Contains(fileType, "png"):
			ext = ".png"
		case strings.Contains(fileType, "jpeg"), strings.Contains(fileType, "jpg"):
			ext = ".jpg"
		case strings.Contains(fileType, "webp"):
			ext = ".webp"
		default:
			return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, firstNonEmpty(fileName, fileType))
		}
	}
	contentType = contentTypes[ext]
	if fileType != "" && canonicalType(fileType) != contentType {
		return "", "", fmt.Errorf("%w: %s does not match %s", ErrUnsupportedType, fileType, ext)
	}
	return ext, contentType, nil
}

// canonicalType drops MIME parameters and folds the image/jpg alias.
func canonicalType(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimSpace(t)
	if t == "image/jpg" {
		return "image/jpeg"
	}
	return t
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
