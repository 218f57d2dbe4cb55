package fastscan

import (
	"context"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"google.golang.org/api/option"
)

// SourceOptions are options for Open
type SourceOptions struct {
	// Gzip decompresses the source. Locations ending in ".gz" are always
	// decompressed.
	Gzip bool
	// Charset transcodes the source to UTF-8. Names are WHATWG encoding
	// labels such as "iso-8859-1" or "shift_jis". Empty means no transcoding.
	Charset string
	// StorageClient is used for gs:// locations. When nil an unauthenticated
	// client is created per source.
	StorageClient *storage.Client
}

// Open opens a byte stream for a Scanner. location is "-" for stdin, a
// gs://bucket/object URL, or a file path.
func Open(ctx context.Context, location string, opts *SourceOptions) (io.ReadCloser, error) {
	if opts == nil {
		opts = new(SourceOptions)
	}
	var rc io.ReadCloser
	var err error
	switch {
	case location == "-":
		rc = io.NopCloser(os.Stdin)
	case strings.HasPrefix(location, "gs://"):
		bucket, object := splitGCSLocation(location)
		if bucket == "" || object == "" {
			return nil, errors.Errorf("invalid gcs location %q", location)
		}
		rc, err = OpenGCSObject(ctx, opts.StorageClient, bucket, object)
	default:
		rc, err = os.Open(location)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", location)
	}
	if opts.Gzip || strings.HasSuffix(location, ".gz") {
		rc, err = wrapSource(rc, NewGzipReader)
		if err != nil {
			return nil, errors.Wrapf(err, "gzip %s", location)
		}
	}
	if opts.Charset != "" {
		charset := opts.Charset
		rc, err = wrapSource(rc, func(r io.Reader) (io.ReadCloser, error) {
			return NewCharsetReader(r, charset)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "charset %s", location)
		}
	}
	return rc, nil
}

// wrapSource wraps rc with a decoding reader and closes rc when that fails.
func wrapSource(rc io.ReadCloser, wrap func(io.Reader) (io.ReadCloser, error)) (io.ReadCloser, error) {
	wrapped, err := wrap(rc)
	if err != nil {
		_ = rc.Close() //nolint:errcheck // the wrap error matters more
		return nil, err
	}
	return wrapped, nil
}

func splitGCSLocation(location string) (bucket, object string) {
	p := strings.TrimPrefix(location, "gs://")
	idx := strings.IndexByte(p, '/')
	if idx < 0 {
		return p, ""
	}
	return p[:idx], p[idx+1:]
}

// decodeReader reads through a decoder and closes both the decoder and the
// reader under it.
type decodeReader struct {
	rdr     io.Reader
	decoded io.Reader
	closer  io.Closer
}

func (z *decodeReader) Read(p []byte) (n int, err error) {
	return z.decoded.Read(p)
}

func (z *decodeReader) Close() error {
	var err error
	if z.closer != nil {
		err = z.closer.Close()
	}
	if z.rdr == nil {
		return err
	}
	if rdr, ok := z.rdr.(io.Closer); ok {
		rdrErr := rdr.Close()
		if rdrErr != nil {
			return rdrErr
		}
	}
	return err
}

// NewGzipReader returns a reader that decompresses r. Closing it closes r
// when r is an io.Closer.
func NewGzipReader(r io.Reader) (io.ReadCloser, error) {
	gzRdr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &decodeReader{
		rdr:     r,
		decoded: gzRdr,
		closer:  gzRdr,
	}, nil
}

// NewCharsetReader returns a reader that transcodes r from charset to UTF-8.
// Closing it closes r when r is an io.Closer.
func NewCharsetReader(r io.Reader, charset string) (io.ReadCloser, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown charset %q", charset)
	}
	return &decodeReader{
		rdr:     r,
		decoded: transform.NewReader(r, enc.NewDecoder()),
	}, nil
}

// gcsReader closes the storage client it was opened with when it owns one.
type gcsReader struct {
	*storage.Reader
	client *storage.Client
}

func (g *gcsReader) Close() error {
	err := g.Reader.Close()
	if g.client == nil {
		return err
	}
	clientErr := g.client.Close()
	if err == nil {
		err = clientErr
	}
	return err
}

// OpenGCSObject opens a Google Cloud Storage object. When client is nil an
// unauthenticated client is created and closed along with the reader.
func OpenGCSObject(ctx context.Context, client *storage.Client, bucket, object string) (io.ReadCloser, error) {
	var owned *storage.Client
	if client == nil {
		var err error
		client, err = storage.NewClient(ctx, option.WithoutAuthentication())
		if err != nil {
			return nil, err
		}
		owned = client
	}
	rdr, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if owned != nil {
			_ = owned.Close() //nolint:errcheck // the reader error matters more
		}
		return nil, err
	}
	return &gcsReader{
		Reader: rdr,
		client: owned,
	}, nil
}
