// Package scb queries the SCB statistical database API for salary
// statistics tables and decodes the JSON-stat2 responses.
package scb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"arbetsdata/internal/source"
	"arbetsdata/internal/stat"
)

// Selection is one dimension filter of a table query.
type Selection struct {
	Code   string   `json:"code"`
	Filter string   `json:"filter"`
	Values []string `json:"values"`
}

// Item builds an item-filter selection over explicit codes.
func Item(code string, values ...string) Selection {
	return Selection{Code: code, Filter: "item", Values: values}
}

// All builds a wildcard selection covering every category of a dimension.
func All(code string) Selection {
	return Selection{Code: code, Filter: "all", Values: []string{"*"}}
}

type tableQuery struct {
	Query    []Selection `json:"query"`
	Response struct {
		Format string `json:"format"`
	} `json:"response"`
}

// Client posts table queries to the SCB API. Requests are paced because the
// API throttles aggressively; one client is shared by all table fetches.
type Client struct {
	baseURL string
	apiKey  string
	http    source.HTTPClient
	pacer   *source.Pacer
	logger  *log.Logger
}

func NewClient(baseURL, apiKey string, minInterval, timeout time.Duration, httpClient source.HTTPClient, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		http:    httpClient,
		pacer:   source.NewPacer(minInterval),
		logger:  logger,
	}
}

// Query posts one table query and decodes the JSON-stat2 cube. A non-2xx
// response is an error; the caller decides whether the table is required.
func (c *Client) Query(ctx context.Context, tablePath string, selections []Selection) (*stat.Cube, error) {
	q := tableQuery{Query: selections}
	q.Response.Format = "json-stat2"

	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("scb query: marshal: %w", err)
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(tablePath, "/")
	c.logger.Printf("[SCB] querying table=%s selections=%d", tablePath, len(selections))

	c.pacer.Wait()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("ApiKey", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scb query %s: %w", tablePath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("scb query %s: status=%d body=%s", tablePath, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var cube stat.Cube
	if err := json.NewDecoder(resp.Body).Decode(&cube); err != nil {
		return nil, fmt.Errorf("scb query %s: decode: %w", tablePath, err)
	}
	return &cube, nil
}

// IncomeSelections covers the salary-by-region table: NUTS2 regions, all
// sectors combined, both and per-sex figures, and the four salary measures.
func IncomeSelections(ssykCodes, years []string) []Selection {
	return []Selection{
		Item("Region", "SE11", "SE12", "SE21", "SE22", "SE23", "SE31", "SE32", "SE33"),
		Item("Sektor", "0"),
		Item("Yrke2012", ssykCodes...),
		Item("Kon", "1", "2", "1+2"),
		Item("ContentsCode", "000007AS", "000007AP", "000007AQ", "000007AR"),
		Item("Tid", years...),
	}
}

// DispersionSelections covers the salary dispersion table: percentile and
// mean measures per occupation and sex, whole country.
func DispersionSelections(ssykCodes, years []string) []Selection {
	return []Selection{
		Item("Yrke2012", ssykCodes...),
		Item("Kon", "1", "2", "1+2"),
		Item("ContentsCode", "000000NV", "000000O0", "000000OA", "000000O1", "000000OB", "000000O2"),
		Item("Tid", years...),
	}
}

// AgeSelections covers the salary-by-age table. Age groups vary between
// table vintages, so the age dimension is taken wholesale.
func AgeSelections(ssykCodes, years []string) []Selection {
	return []Selection{
		Item("Yrke2012", ssykCodes...),
		All("Alder"),
		Item("Kon", "1", "2", "1+2"),
		All("ContentsCode"),
		Item("Tid", years...),
	}
}

// EducationSelections covers the salary-by-education table; like the age
// table, the education-level dimension is taken wholesale.
func EducationSelections(ssykCodes, years []string) []Selection {
	return []Selection{
		Item("Yrke2012", ssykCodes...),
		All("UtbildningsNiva"),
		Item("Kon", "1", "2", "1+2"),
		All("ContentsCode"),
		Item("Tid", years...),
	}
}
