// Package enrich extracts skill, trait and occupation mentions from job ad
// texts via the ad enrichment API, and aggregates them per occupation group.
package enrich

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
	"arbetsdata/internal/source/jobads"
)

// Mention is one extracted term from one ad, already filtered by the
// prediction threshold.
type Mention struct {
	AdID        string
	Term        string
	Label       string
	Type        string
	Probability float64
}

// Options tune which ads are sent and which candidates are kept.
type Options struct {
	BatchSize   int
	Threshold   float64
	MinTextLen  int
	MaxTextLen  int
	MinInterval time.Duration
	Timeout     time.Duration
}

// Client calls the enrichment API in small batches. Enrichment is optional:
// a failed batch is logged and skipped, never run-aborting.
type Client struct {
	baseURL string
	http    source.HTTPClient
	pacer   *source.Pacer
	opts    Options
	logger  *log.Logger
}

func NewClient(baseURL string, opts Options, httpClient source.HTTPClient, logger *log.Logger) *Client {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.MinTextLen <= 0 {
		opts.MinTextLen = 50
	}
	if opts.MaxTextLen <= 0 {
		opts.MaxTextLen = 10000
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    httpClient,
		pacer:   source.NewPacer(opts.MinInterval),
		opts:    opts,
		logger:  logger,
	}
}

type documentInput struct {
	DocID       string `json:"doc_id"`
	DocHeadline string `json:"doc_headline"`
	DocText     string `json:"doc_text"`
}

type enrichRequest struct {
	DocumentsInput          []documentInput `json:"documents_input"`
	IncludeTermsInfo        bool            `json:"include_terms_info"`
	ClassificationThreshold float64         `json:"classification_threshold"`
}

type candidate struct {
	Term         string  `json:"term"`
	ConceptLabel string  `json:"concept_label"`
	Prediction   float64 `json:"prediction"`
}

type enrichedDocument struct {
	DocID              string `json:"doc_id"`
	EnrichedCandidates struct {
		Occupations  []candidate `json:"occupations"`
		Competencies []candidate `json:"competencies"`
		Traits       []candidate `json:"traits"`
	} `json:"enriched_candidates"`
}

// EnrichAds sends eligible ad texts in batches and collects mentions above
// the prediction threshold. Ads with texts at or below the minimum length
// are skipped; long texts are truncated before sending.
func (c *Client) EnrichAds(ctx context.Context, ads []jobads.JobAd) []Mention {
	docs := make([]documentInput, 0, len(ads))
	for _, ad := range ads {
		text := ad.DescriptionText
		if len(text) <= c.opts.MinTextLen {
			continue
		}
		if len(text) > c.opts.MaxTextLen {
			text = text[:c.opts.MaxTextLen]
		}
		docs = append(docs, documentInput{DocID: ad.ID, DocHeadline: ad.Headline, DocText: text})
	}
	c.logger.Printf("[Enrich] eligible=%d of %d ads, batch_size=%d", len(docs), len(ads), c.opts.BatchSize)

	var mentions []Mention
	failed := 0
	for start := 0; start < len(docs); start += c.opts.BatchSize {
		end := start + c.opts.BatchSize
		if end > len(docs) {
			end = len(docs)
		}

		batch, err := c.enrichBatch(ctx, docs[start:end])
		if err != nil {
			failed++
			c.logger.Printf("[Enrich] batch %d-%d failed, skipping: %v", start, end, err)
			continue
		}
		mentions = append(mentions, batch...)
	}
	if failed > 0 {
		c.logger.Printf("[Enrich] %d batches failed, results are partial", failed)
	}
	return mentions
}

func (c *Client) enrichBatch(ctx context.Context, docs []documentInput) ([]Mention, error) {
	body, err := json.Marshal(enrichRequest{
		DocumentsInput:          docs,
		IncludeTermsInfo:        true,
		ClassificationThreshold: c.opts.Threshold,
	})
	if err != nil {
		return nil, err
	}

	c.pacer.Wait()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/enrichtextdocuments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var enriched []enrichedDocument
	if err := json.NewDecoder(resp.Body).Decode(&enriched); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	var out []Mention
	for _, doc := range enriched {
		out = append(out, c.keep(doc.DocID, "skill", doc.EnrichedCandidates.Competencies)...)
		out = append(out, c.keep(doc.DocID, "trait", doc.EnrichedCandidates.Traits)...)
		out = append(out, c.keep(doc.DocID, "occupation", doc.EnrichedCandidates.Occupations)...)
	}
	return out, nil
}

func (c *Client) keep(adID, mentionType string, candidates []candidate) []Mention {
	var out []Mention
	for _, cand := range candidates {
		if cand.Prediction < c.opts.Threshold {
			continue
		}
		label := cand.ConceptLabel
		if label == "" {
			label = cand.Term
		}
		if label == "" {
			continue
		}
		out = append(out, Mention{
			AdID:        adID,
			Term:        cand.Term,
			Label:       label,
			Type:        mentionType,
			Probability: cand.Prediction,
		})
	}
	return out
}
