package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lixenwraith/heartscroll/constants"
)

// DefaultResultPath is where headless content APIs put the document
const DefaultResultPath = "result"

// HTTPFetcher fetches sections from a headless content API
// The endpoint may contain an {id} placeholder; otherwise the id is sent as
// the "section" query parameter. The section object is read from the JSON
// response at resultPath (gjson syntax).
type HTTPFetcher struct {
	endpoint   string
	resultPath string
	client     *http.Client
}

// NewHTTPFetcher creates a fetcher; a nil client uses http.DefaultClient
func NewHTTPFetcher(endpoint, resultPath string, client *http.Client) *HTTPFetcher {
	if resultPath == "" {
		resultPath = DefaultResultPath
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{endpoint: endpoint, resultPath: resultPath, client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, sectionID string) (Section, error) {
	target, err := f.url(sectionID)
	if err != nil {
		return Section{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Section{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return Section{}, fmt.Errorf("fetch %s: %w", sectionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Section{}, fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
	}
	if resp.StatusCode != http.StatusOK {
		return Section{}, fmt.Errorf("fetch %s: unexpected status %s", sectionID, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxContentBytes+1))
	if err != nil {
		return Section{}, fmt.Errorf("read %s: %w", sectionID, err)
	}
	if len(body) > constants.MaxContentBytes {
		return Section{}, fmt.Errorf("fetch %s: response exceeds %d bytes", sectionID, constants.MaxContentBytes)
	}
	if !gjson.ValidBytes(body) {
		return Section{}, fmt.Errorf("fetch %s: malformed json", sectionID)
	}

	res := gjson.GetBytes(body, f.resultPath)
	if !res.Exists() || res.Type == gjson.Null {
		return Section{}, fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
	}

	var sec Section
	if err := json.Unmarshal([]byte(res.Raw), &sec); err != nil {
		return Section{}, fmt.Errorf("decode %s: %w", sectionID, err)
	}
	if sec.ID == "" {
		sec.ID = sectionID
	}
	return sec, nil
}

func (f *HTTPFetcher) url(sectionID string) (string, error) {
	if strings.Contains(f.endpoint, "{id}") {
		return strings.ReplaceAll(f.endpoint, "{id}", url.PathEscape(sectionID)), nil
	}

	u, err := url.Parse(f.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse content url: %w", err)
	}
	q := u.Query()
	q.Set("section", sectionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
