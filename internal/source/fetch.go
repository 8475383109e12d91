package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	appLog "schedview/internal/log"
	"schedview/internal/model"
)

// maxBodyBytes bounds a single resource body.
const maxBodyBytes = 16 << 20

var (
	ErrEmptyLocation = errors.New("resource location is empty")
	ErrBadStatus     = errors.New("unexpected response status")
	ErrTooLarge      = errors.New("resource body too large")
)

// Fetcher reads the users and schedule resources. A location is an http(s)
// URL, a file:// URL or a plain filesystem path.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher whose HTTP requests time out after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// FetchUsers loads {"users": [...]}.
func (f *Fetcher) FetchUsers(ctx context.Context, location string) ([]model.User, error) {
	body, err := f.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	var doc model.UsersDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, goerr.Wrap(err, "decode users", goerr.V("location", redactURL(location)))
	}
	return doc.Users, nil
}

// FetchSchedule loads the layered schedule document.
func (f *Fetcher) FetchSchedule(ctx context.Context, location string) (*model.ScheduleDocument, error) {
	body, err := f.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	var doc model.ScheduleDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, goerr.Wrap(err, "decode schedule", goerr.V("location", redactURL(location)))
	}
	return &doc, nil
}

// Fetch returns the raw body at location. Non-2xx responses are errors.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrEmptyLocation
	}

	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return f.fetchHTTP(ctx, location)
	case strings.HasPrefix(location, "file://"):
		return readFile(strings.TrimPrefix(location, "file://"))
	default:
		return readFile(location)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "build request", goerr.V("url", redactURL(url)))
	}
	req.Header.Set("Accept", "application/json")

	appLog.Debug("fetch start", "url", redactURL(url))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "fetch resource", goerr.V("url", redactURL(url)))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, goerr.Wrap(ErrBadStatus, resp.Status,
			goerr.V("url", redactURL(url)), goerr.V("status", resp.StatusCode))
	}

	body, err := readLimited(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "read body", goerr.V("url", redactURL(url)))
	}
	appLog.Debug("fetch success", "url", redactURL(url), "status", resp.StatusCode, "bytes", len(body))
	return body, nil
}

func readFile(path string) ([]byte, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "open resource file", goerr.V("path", path))
	}
	defer fp.Close()
	body, err := readLimited(fp)
	if err != nil {
		return nil, goerr.Wrap(err, "read resource file", goerr.V("path", path))
	}
	return body, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, maxBodyBytes)
	}
	return body, nil
}

// redactURL hides the path and query of a URL for logging.
//
//	https://example.com/private/users.json?token=abcd
//	-> https://example.com/...(redacted)
func redactURL(u string) string {
	i := strings.Index(u, "://")
	if i < 0 || strings.HasPrefix(u, "file://") {
		return u
	}
	rest := u[i+3:]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		return u[:i+3+j] + "/...(redacted)"
	}
	if j := strings.IndexByte(rest, '?'); j >= 0 {
		return u[:i+3+j] + "/...(redacted)"
	}
	return u
}
