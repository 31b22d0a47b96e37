package registry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/conn-castle/release-train/internal/messages"
)

// DefaultBaseURL is the sparse index endpoint of the default registry.
const DefaultBaseURL = "https://index.crates.io"

// ErrNetwork wraps transport and server failures. These are fatal for the
// run: treating an unreachable index as "unpublished" would risk a
// duplicate-publish attempt.
var ErrNetwork = errors.New("registry index request failed")

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// Client performs conditional fetches against a sparse registry index. It
// keeps a per-name etag and the last parsed entry so a revalidated fetch
// ("not modified") is served without re-downloading the body.
type Client struct {
	baseURL  string
	http     *http.Client
	etags    map[string]string
	lastSeen map[string]*Entry
}

// NewClient creates a Client for the given base URL; empty selects the
// default registry endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     defaultHTTPClient,
		etags:    make(map[string]string),
		lastSeen: make(map[string]*Entry),
	}
}

// indexPath returns the sparse index path for a package name: short names
// live under a length bucket, longer names under two two-character shards.
func indexPath(name string) string {
	lower := strings.ToLower(name)
	switch len(lower) {
	case 0:
		return ""
	case 1:
		return "1/" + lower
	case 2:
		return "2/" + lower
	case 3:
		return "3/" + lower[:1] + "/" + lower
	default:
		return lower[:2] + "/" + lower[2:4] + "/" + lower
	}
}

// Fetch retrieves the index entry for name, returning nil when the registry
// does not know the package. The request carries the last-seen etag for the
// name; a "not modified" response reuses the previously parsed entry.
func (c *Client) Fetch(name string) (*Entry, error) {
	path := indexPath(name)
	if path == "" {
		return nil, fmt.Errorf(messages.RegistryNameRequired)
	}
	url := c.baseURL + "/" + path

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf(messages.RegistryRequestErrFmt, name, err)
	}
	req.Header.Set("User-Agent", "release-train")
	if etag := c.etags[name]; etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNetwork, name, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	// Remember the validator for the next fetch of the same name.
	if etag := resp.Header.Get("ETag"); etag != "" {
		c.etags[name] = etag
	}

	switch resp.StatusCode {
	case http.StatusOK:
		entry, err := parseEntry(name, resp.Body)
		if err != nil {
			return nil, err
		}
		c.lastSeen[name] = entry
		return entry, nil
	case http.StatusNotModified:
		return c.lastSeen[name], nil
	case http.StatusNotFound, http.StatusGone, http.StatusUnavailableForLegalReasons:
		c.lastSeen[name] = nil
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s: %s", ErrNetwork, name, resp.Status)
	}
}

// indexLine is one newline-delimited JSON record of the sparse index body.
type indexLine struct {
	Vers string `json:"vers"`
}

func parseEntry(name string, body io.Reader) (*Entry, error) {
	entry := &Entry{Name: name}
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record indexLine
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf(messages.RegistryParseErrFmt, name, err)
		}
		if record.Vers != "" {
			entry.Versions = append(entry.Versions, record.Vers)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNetwork, name, err)
	}
	return entry, nil
}
