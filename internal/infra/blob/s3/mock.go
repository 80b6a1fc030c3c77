package s3

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewMockForTests returns a Store whose client talks to an in-process fake
// bucket instead of the network.
func NewMockForTests() *Store {
	bucket := &fakeBucket{objects: make(map[string]fakeObject)}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: bucket}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://s3.test.invalid")
	})
	return &Store{client: client, bucket: "ohana-test"}
}

type fakeObject struct {
	body        []byte
	contentType string
	modified    time.Time
}

// fakeBucket serves the four S3 calls the Store issues: PutObject, GetObject,
// HeadObject and ListObjectsV2.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]fakeObject
}

func mockETag(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:16])
}

func (b *fakeBucket) RoundTrip(req *http.Request) (*http.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Path-style URLs: /<bucket>/<key>.
	_, key, _ := strings.Cut(strings.TrimPrefix(req.URL.Path, "/"), "/")
	switch {
	case req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2":
		return b.list(req.URL.Query().Get("prefix")), nil
	case req.Method == http.MethodPut:
		return b.put(key, req)
	case req.Method == http.MethodGet, req.Method == http.MethodHead:
		obj, ok := b.objects[key]
		if !ok && req.Method == http.MethodHead {
			return respond(http.StatusNotFound, "", nil), nil
		}
		if !ok {
			return respond(http.StatusNotFound, noSuchKey, http.Header{"Content-Type": {"application/xml"}}), nil
		}
		header := http.Header{
			"Content-Length": {strconv.Itoa(len(obj.body))},
			"Content-Type":   {obj.contentType},
			"Etag":           {strconv.Quote(mockETag(obj.body))},
			"Last-Modified":  {obj.modified.Format(http.TimeFormat)},
		}
		if req.Method == http.MethodHead {
			return respond(http.StatusOK, "", header), nil
		}
		return respond(http.StatusOK, string(obj.body), header), nil
	}
	return respond(http.StatusNotImplemented, "", nil), nil
}

func (b *fakeBucket) put(key string, req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	if decoded, ok := decodeSingleChunk(body); ok {
		body = decoded
	}
	b.objects[key] = fakeObject{body: body, contentType: req.Header.Get("Content-Type"), modified: time.Now().UTC()}
	return respond(http.StatusOK, "", http.Header{"Etag": {strconv.Quote(mockETag(body))}}), nil
}

func (b *fakeBucket) list(prefix string) *http.Response {
	var keys []string
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	var out strings.Builder
	out.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
	for _, k := range keys {
		obj := b.objects[k]
		fmt.Fprintf(&out, "<Contents><Key>%s</Key><Size>%d</Size><ETag>&quot;%s&quot;</ETag><LastModified>%s</LastModified></Contents>",
			k, len(obj.body), mockETag(obj.body), obj.modified.Format(time.RFC3339))
	}
	out.WriteString("</ListBucketResult>")
	return respond(http.StatusOK, out.String(), http.Header{"Content-Type": {"application/xml"}})
}

func respond(status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{StatusCode: status, Header: header, Body: io.NopCloser(bytes.NewReader([]byte(body)))}
}

const noSuchKey = `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`

// decodeSingleChunk unwraps an aws-chunked body carrying one data chunk:
// "<hex size>\r\n<data>\r\n0\r\n...". Anything else is returned unchanged by the caller.
func decodeSingleChunk(raw []byte) ([]byte, bool) {
	sizeHex, rest, ok := bytes.Cut(raw, []byte("\r\n"))
	if !ok {
		return nil, false
	}
	if i := bytes.IndexByte(sizeHex, ';'); i >= 0 {
		sizeHex = sizeHex[:i]
	}
	size, err := strconv.ParseInt(string(sizeHex), 16, 64)
	if err != nil || size < 0 || int64(len(rest)) < size+2 {
		return nil, false
	}
	data, tail := rest[:size], rest[size:]
	if !bytes.HasPrefix(tail, []byte("\r\n0")) {
		return nil, false
	}
	return data, true
}
