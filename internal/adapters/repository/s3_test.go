package repository_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/okian/multielo/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeS3 struct {
	objects  map[string][]byte
	encoding map[string]string
	failGet  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, encoding: map[string]string{}}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "not found"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.encoding[key] = aws.ToString(in.ContentEncoding)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()

	Convey("Given an S3 store", t, func() {
		client := newFakeS3()
		s, err := repository.NewS3Store(client, "ratings", repository.WithPrefix("prod"))
		So(err, ShouldBeNil)

		Convey("When an object is written and read back", func() {
			So(s.Put(ctx, "state.json", []byte("payload")), ShouldBeNil)
			got, err := s.Get(ctx, "state.json")

			Convey("Then it round trips under the prefix", func() {
				So(err, ShouldBeNil)
				So(string(got), ShouldEqual, "payload")
				So(client.objects, ShouldContainKey, "ratings/prod/state.json")
			})
		})

		Convey("When the object does not exist", func() {
			_, err := s.Get(ctx, "state.json")

			Convey("Then it is not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When S3 fails for another reason", func() {
			client.failGet = &smithy.GenericAPIError{Code: "AccessDenied"}
			_, err := s.Get(ctx, "state.json")

			Convey("Then the error is passed through", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeFalse)
				var apiErr smithy.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.ErrorCode(), ShouldEqual, "AccessDenied")
			})
		})
	})

	Convey("Given a gzip S3 store", t, func() {
		client := newFakeS3()
		s, err := repository.NewS3Store(client, "ratings", repository.WithGzip(true))
		So(err, ShouldBeNil)
		payload := bytes.Repeat([]byte("multielo "), 200)

		Convey("When an object is written", func() {
			So(s.Put(ctx, "state.json", payload), ShouldBeNil)
			stored := client.objects["ratings/state.json.gz"]

			Convey("Then it is stored compressed and read back plain", func() {
				So(len(stored), ShouldBeLessThan, len(payload))
				So(client.encoding["ratings/state.json.gz"], ShouldEqual, "gzip")
				got, err := s.Get(ctx, "state.json")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, payload)
			})
		})
	})

	Convey("Given missing arguments", t, func() {
		_, errClient := repository.NewS3Store(nil, "b")
		_, errBucket := repository.NewS3Store(newFakeS3(), "")

		Convey("Then construction fails", func() {
			So(errClient, ShouldNotBeNil)
			So(errBucket, ShouldNotBeNil)
		})
	})
}
