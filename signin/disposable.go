package signin

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DomainBlocklist supplies the set of disposable-email domains.
type DomainBlocklist interface {
	FetchDomains(ctx context.Context) (map[string]struct{}, error)
}

// HTTPBlocklist fetches a newline-separated plaintext domain list.
// The list is fetched per attempt; whether it should be cached or
// interval-refreshed is an open performance question upstream.
type HTTPBlocklist struct {
	url        string
	httpClient *http.Client
}

// NewHTTPBlocklist creates a fetcher for the given list URL.
func NewHTTPBlocklist(url string, client *http.Client) *HTTPBlocklist {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPBlocklist{url: url, httpClient: client}
}

// FetchDomains implements DomainBlocklist.
func (b *HTTPBlocklist) FetchDomains(ctx context.Context) (map[string]struct{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("disposable domains list: unexpected status %d", resp.StatusCode)
	}

	domains := map[string]struct{}{}
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		domain := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if domain == "" || strings.HasPrefix(domain, "#") {
			continue
		}
		domains[domain] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return domains, nil
}
