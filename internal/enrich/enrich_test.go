package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"testing"

	"arbetsdata/internal/source/jobads"
)

type mockHTTPClient struct {
	do       func(req *http.Request) (*http.Response, error)
	requests []*http.Request
	bodies   []enrichRequest
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.requests = append(m.requests, req)
	var body enrichRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err == nil {
		m.bodies = append(m.bodies, body)
	}
	return m.do(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func enrichedBody(docs []enrichedDocument) string {
	b, _ := json.Marshal(docs)
	return string(b)
}

func longText(n int) string {
	return strings.Repeat("x", n)
}

func TestEnrichAdsFiltersAndBatches(t *testing.T) {
	echo := func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, "[]"), nil
	}
	mock := &mockHTTPClient{do: echo}

	c := NewClient("https://enrich.example", Options{
		BatchSize:  2,
		Threshold:  0.5,
		MinTextLen: 50,
		MaxTextLen: 100,
	}, mock, discardLogger())

	ads := []jobads.JobAd{
		{ID: "1", DescriptionText: longText(60)},
		{ID: "2", DescriptionText: longText(50)},  // exactly min length, skipped
		{ID: "3", DescriptionText: longText(200)}, // truncated
		{ID: "4", DescriptionText: longText(80)},
		{ID: "5", DescriptionText: longText(90)},
	}

	c.EnrichAds(context.Background(), ads)

	if len(mock.bodies) != 2 {
		t.Fatalf("made %d batch requests, want 2", len(mock.bodies))
	}
	if got := len(mock.bodies[0].DocumentsInput); got != 2 {
		t.Errorf("first batch has %d docs, want 2", got)
	}
	if got := len(mock.bodies[1].DocumentsInput); got != 2 {
		t.Errorf("second batch has %d docs, want 2", got)
	}
	for _, body := range mock.bodies {
		if !body.IncludeTermsInfo || body.ClassificationThreshold != 0.5 {
			t.Errorf("request options = %+v, want terms info and threshold 0.5", body)
		}
		for _, doc := range body.DocumentsInput {
			if doc.DocID == "2" {
				t.Error("ad with text at minimum length was sent")
			}
			if len(doc.DocText) > 100 {
				t.Errorf("doc %s text length %d exceeds max", doc.DocID, len(doc.DocText))
			}
		}
	}
}

func TestEnrichAdsAppliesThreshold(t *testing.T) {
	docs := []enrichedDocument{{DocID: "1"}}
	docs[0].EnrichedCandidates.Competencies = []candidate{
		{Term: "go", ConceptLabel: "Go", Prediction: 0.9},
		{Term: "fax", ConceptLabel: "Fax", Prediction: 0.2},
	}
	docs[0].EnrichedCandidates.Traits = []candidate{
		{Term: "noggrann", Prediction: 0.7},
	}
	mock := &mockHTTPClient{do: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, enrichedBody(docs)), nil
	}}

	c := NewClient("https://enrich.example", Options{Threshold: 0.5}, mock, discardLogger())
	mentions := c.EnrichAds(context.Background(), []jobads.JobAd{{ID: "1", DescriptionText: longText(60)}})

	if len(mentions) != 2 {
		t.Fatalf("got %d mentions, want 2: %+v", len(mentions), mentions)
	}
	if mentions[0].Label != "Go" || mentions[0].Type != "skill" {
		t.Errorf("first mention = %+v", mentions[0])
	}
	if mentions[1].Label != "noggrann" || mentions[1].Type != "trait" {
		t.Errorf("second mention = %+v (trait should fall back to term label)", mentions[1])
	}
}

func TestEnrichAdsSkipsFailedBatch(t *testing.T) {
	docs := []enrichedDocument{{DocID: "2"}}
	docs[0].EnrichedCandidates.Competencies = []candidate{{Term: "go", ConceptLabel: "Go", Prediction: 0.9}}

	call := 0
	mock := &mockHTTPClient{do: func(req *http.Request) (*http.Response, error) {
		call++
		if call == 1 {
			return jsonResponse(500, "boom"), nil
		}
		return jsonResponse(200, enrichedBody(docs)), nil
	}}

	c := NewClient("https://enrich.example", Options{BatchSize: 1, Threshold: 0.5}, mock, discardLogger())
	mentions := c.EnrichAds(context.Background(), []jobads.JobAd{
		{ID: "1", DescriptionText: longText(60)},
		{ID: "2", DescriptionText: longText(60)},
	})

	if len(mentions) != 1 || mentions[0].AdID != "2" {
		t.Fatalf("mentions = %+v, want only ad 2", mentions)
	}
}

func TestAggregateSkills(t *testing.T) {
	ads := []jobads.JobAd{
		{ID: "1", SSYKCode: "2512", OccupationLabel: "Mjukvaruutvecklare"},
		{ID: "2", SSYKCode: "2512", OccupationLabel: "Mjukvaruutvecklare"},
		{ID: "3", SSYKCode: "2511", OccupationLabel: "Systemanalytiker"},
	}
	mentions := []Mention{
		{AdID: "1", Label: "Go", Type: "skill", Probability: 0.8},
		{AdID: "2", Label: "Go", Type: "skill", Probability: 0.6},
		{AdID: "2", Label: "Go", Type: "skill", Probability: 1.0}, // second mention in the same ad still counts
		{AdID: "1", Label: "SQL", Type: "skill", Probability: 0.9},
		{AdID: "3", Label: "Go", Type: "skill", Probability: 0.7},
		{AdID: "missing", Label: "Go", Type: "skill", Probability: 0.5},
	}

	rows := AggregateSkills(mentions, ads)
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4: %+v", len(rows), rows)
	}

	// Unmatched mention keeps an empty occupation code and sorts first.
	if rows[0].SSYKCode != "" || rows[0].Skill != "Go" || rows[0].Occurrences != 1 {
		t.Errorf("unmatched row = %+v", rows[0])
	}
	if rows[1].SSYKCode != "2511" {
		t.Errorf("second row = %+v", rows[1])
	}

	var goRow *SkillCount
	for i := range rows {
		if rows[i].SSYKCode == "2512" && rows[i].Skill == "Go" {
			goRow = &rows[i]
		}
	}
	if goRow == nil {
		t.Fatal("no 2512/Go row")
	}
	if goRow.Occurrences != 3 {
		t.Errorf("Go occurrences = %d, want 3 mentions", goRow.Occurrences)
	}
	if want := (0.8 + 0.6 + 1.0) / 3; math.Abs(goRow.MeanProbability-want) > 1e-9 {
		t.Errorf("Go mean probability = %v, want %v", goRow.MeanProbability, want)
	}

	// Within 2512, higher occurrence counts rank before lower ones.
	var idx2512 []int
	for i := range rows {
		if rows[i].SSYKCode == "2512" {
			idx2512 = append(idx2512, i)
		}
	}
	if len(idx2512) != 2 || rows[idx2512[0]].Skill != "Go" || rows[idx2512[1]].Skill != "SQL" {
		t.Errorf("2512 ordering = %+v", rows)
	}
}
