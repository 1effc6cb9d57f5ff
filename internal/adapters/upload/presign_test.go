package upload_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/achievehub/achievehub/internal/adapters/upload"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	. "github.com/smartystreets/goconvey/convey"
)

type fakePresigner struct {
	in  *s3.PutObjectInput
	err error
}

func (f *fakePresigner) PresignPutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://signed.example/" + aws.ToString(in.Key), Method: "PUT"}, nil
}

func TestResolveType(t *testing.T) {
	Convey("Given file names and MIME types", t, func() {
		ext, ct, err := upload.ResolveType("Poster.PNG", "")
		So(err, ShouldBeNil)
		So(ext, ShouldEqual, ".png")
		So(ct, ShouldEqual, "image/png")

		ext, ct, err = upload.ResolveType("", "image/jpeg")
		So(err, ShouldBeNil)
		So(ext, ShouldEqual, ".jpg")
		So(ct, ShouldEqual, "image/jpeg")

		ext, _, err = upload.ResolveType("scan.bin", "image/webp")
		So(err, ShouldBeNil)
		So(ext, ShouldEqual, ".webp")

		_, _, err = upload.ResolveType("doc.pdf", "application/pdf")
		So(errors.Is(err, upload.ErrUnsupportedType), ShouldBeTrue)

		_, _, err = upload.ResolveType(" ", "")
		So(errors.Is(err, upload.ErrMissingFile), ShouldBeTrue)

		Convey("The declared type must agree with the extension", func() {
			_, _, err := upload.ResolveType("photo.png", "text/html")
			So(errors.Is(err, upload.ErrUnsupportedType), ShouldBeTrue)

			_, _, err = upload.ResolveType("photo.png", "image/jpeg")
			So(errors.Is(err, upload.ErrUnsupportedType), ShouldBeTrue)

			ext, ct, err := upload.ResolveType("photo.JPG", "image/jpg; charset=binary")
			So(err, ShouldBeNil)
			So(ext, ShouldEqual, ".jpg")
			So(ct, ShouldEqual, "image/jpeg")
		})
	})
}

func TestPresign(t *testing.T) {
	Convey("Given a presigner with a fixed clock and id", t, func() {
		fake := &fakePresigner{}
		now := time.Date(2025, 11, 13, 10, 0, 0, 0, time.UTC)
		p := upload.NewPresigner(fake, "bucket-x",
			upload.WithPrefix("/activities/"),
			upload.WithExpiry(2*time.Minute),
			upload.WithClock(func() time.Time { return now }),
			upload.WithIDGenerator(func() string { return "abc123" }))

		Convey("Keys are date based under the prefix", func() {
			res, err := p.Presign(context.Background(), "poster.jpg", "")
			So(err, ShouldBeNil)
			So(res.Key, ShouldEqual, "activities/2025/11/13/abc123.jpg")
			So(res.ObjectURL, ShouldEqual, "https://bucket-x.s3.amazonaws.com/activities/2025/11/13/abc123.jpg")
			So(res.UploadURL, ShouldEqual, "https://signed.example/activities/2025/11/13/abc123.jpg")
			So(res.ContentType, ShouldEqual, "image/jpeg")
			So(res.ExpiresAt.Equal(now.Add(2*time.Minute)), ShouldBeTrue)
			So(aws.ToString(fake.in.Bucket), ShouldEqual, "bucket-x")
			So(aws.ToString(fake.in.ContentType), ShouldEqual, "image/jpeg")
		})

		Convey("Signer failures are wrapped", func() {
			fake.err = errors.New("no credentials")
			_, err := p.Presign(context.Background(), "poster.jpg", "")
			So(errors.Is(err, upload.ErrPresign), ShouldBeTrue)
		})
	})
}
