package jobads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"arbetsdata/internal/source"
)

// SSYKConcept is one occupation-group entry from the taxonomy API.
type SSYKConcept struct {
	ConceptID string
	SSYKCode  string
	Label     string
	Type      string
}

// RegionConcept is one region entry from the taxonomy API.
type RegionConcept struct {
	ConceptID string
	Name      string
}

// TaxonomyClient fetches occupation and region reference data. All of it is
// optional enrichment: a failed fetch degrades to the static fallbacks.
type TaxonomyClient struct {
	baseURL string
	http    source.HTTPClient
	logger  *log.Logger
}

func NewTaxonomyClient(baseURL string, timeout time.Duration, httpClient source.HTTPClient, logger *log.Logger) *TaxonomyClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &TaxonomyClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    httpClient,
		logger:  logger,
	}
}

type ssykConceptPayload struct {
	ID             string `json:"id"`
	SSYKCode2012   string `json:"ssyk-code-2012"`
	PreferredLabel string `json:"preferred-label"`
	Type           string `json:"type"`
}

// SSYKCodes fetches all SSYK occupation concepts, level 1 through 4.
func (c *TaxonomyClient) SSYKCodes(ctx context.Context) ([]SSYKConcept, error) {
	endpoint := c.baseURL + "/specific/concepts/ssyk?type=" +
		"ssyk-level-1%20ssyk-level-2%20ssyk-level-3%20ssyk-level-4"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("taxonomy ssyk: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("taxonomy ssyk: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload []ssykConceptPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("taxonomy ssyk: decode: %w", err)
	}

	out := make([]SSYKConcept, 0, len(payload))
	for _, item := range payload {
		code := item.SSYKCode2012
		if code == "" {
			code = item.PreferredLabel
		}
		out = append(out, SSYKConcept{
			ConceptID: item.ID,
			SSYKCode:  code,
			Label:     item.PreferredLabel,
			Type:      item.Type,
		})
	}
	return out, nil
}

// Regions fetches region concepts; on any failure it returns the static
// fallback list so the pipeline keeps a usable region vocabulary.
func (c *TaxonomyClient) Regions(ctx context.Context) []RegionConcept {
	endpoint := c.baseURL + "/specific/concepts/region"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fallbackRegions()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("[Taxonomy] region fetch failed, using fallback list: %v", err)
		return fallbackRegions()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Printf("[Taxonomy] region fetch failed status=%d, using fallback list", resp.StatusCode)
		return fallbackRegions()
	}

	var payload []struct {
		ID             string `json:"id"`
		PreferredLabel string `json:"preferred-label"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Printf("[Taxonomy] region decode failed, using fallback list: %v", err)
		return fallbackRegions()
	}

	out := make([]RegionConcept, 0, len(payload))
	for _, item := range payload {
		out = append(out, RegionConcept{ConceptID: item.ID, Name: item.PreferredLabel})
	}
	if len(out) == 0 {
		return fallbackRegions()
	}
	return out
}

func fallbackRegions() []RegionConcept {
	return []RegionConcept{
		{ConceptID: "CifL_Rzy_Mku", Name: "Stockholm"},
		{ConceptID: "9hXe_F4g_eTG", Name: "Västra Götaland"},
		{ConceptID: "EVpN_aAi_R6p", Name: "Skåne"},
	}
}
