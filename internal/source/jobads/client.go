package jobads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"arbetsdata/internal/source"
)

const (
	pageLimit        = 100
	defaultUserAgent = "arbetsdata/1.0"
)

// Client fetches archived job advertisements from the historical ads API.
// Requests are paced, never concurrent.
type Client struct {
	baseURL string
	http    source.HTTPClient
	pacer   *source.Pacer
	logger  *log.Logger
}

func NewClient(baseURL string, minInterval, timeout time.Duration, httpClient source.HTTPClient, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    httpClient,
		pacer:   source.NewPacer(minInterval),
		logger:  logger,
	}
}

type searchResponse struct {
	Total struct {
		Value int `json:"value"`
	} `json:"total"`
	Hits []rawAd `json:"hits"`
}

// SearchParams selects one page of historical ads.
type SearchParams struct {
	SSYKCode        string
	PublishedAfter  string
	PublishedBefore string
	Region          string
	Offset          int
	Limit           int
}

// Search requests one page. A non-2xx response is an error; the primary ads
// fetch is run-aborting, so the caller decides.
func (c *Client) Search(ctx context.Context, p SearchParams) (searchResponse, error) {
	var out searchResponse

	limit := p.Limit
	if limit <= 0 || limit > pageLimit {
		limit = pageLimit
	}

	q := url.Values{}
	q.Set("offset", strconv.Itoa(p.Offset))
	q.Set("limit", strconv.Itoa(limit))
	if p.SSYKCode != "" {
		q.Set("occupation-group", p.SSYKCode)
	}
	if p.PublishedAfter != "" {
		q.Set("published-after", p.PublishedAfter)
	}
	if p.PublishedBefore != "" {
		q.Set("published-before", p.PublishedBefore)
	}
	if p.Region != "" {
		q.Set("region", p.Region)
	}

	endpoint := c.baseURL + "/search?" + q.Encode()

	c.pacer.Wait()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return out, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return out, fmt.Errorf("jobads search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return out, fmt.Errorf("jobads search: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("jobads search: decode: %w", err)
	}
	return out, nil
}

// FetchPeriod pages through all ads for one occupation code within a
// publication window, stopping when a page comes back short, the declared
// total is reached, or maxResults ads have been collected.
func (c *Client) FetchPeriod(ctx context.Context, ssykCode, publishedAfter, publishedBefore string, maxResults int) ([]JobAd, error) {
	if maxResults <= 0 {
		maxResults = 10000
	}

	var ads []JobAd
	offset := 0
	for len(ads) < maxResults {
		c.logger.Printf("[JobAds] fetching ssyk=%s offset=%d collected=%d", ssykCode, offset, len(ads))

		page, err := c.Search(ctx, SearchParams{
			SSYKCode:        ssykCode,
			PublishedAfter:  publishedAfter,
			PublishedBefore: publishedBefore,
			Offset:          offset,
			Limit:           pageLimit,
		})
		if err != nil {
			return nil, err
		}
		if len(page.Hits) == 0 {
			break
		}

		for _, hit := range page.Hits {
			ads = append(ads, hit.normalize(ssykCode))
			if len(ads) >= maxResults {
				return ads, nil
			}
		}

		offset += len(page.Hits)
		if len(page.Hits) < pageLimit {
			break
		}
		if page.Total.Value > 0 && offset >= page.Total.Value {
			break
		}
	}
	return ads, nil
}
