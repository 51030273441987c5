package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/laborlens/jobmarket-cli/internal/normalize"
)

// JoobleColumns is the column order of the Jooble raw CSV.
var JoobleColumns = []string{
	"title", "company", "location", "salary", "snippet", "updated",
}

// JoobleOptions configures the Jooble API client.
type JoobleOptions struct {
	APIKey     string
	BaseURL    string
	RatePerSec float64
	Timeout    time.Duration
}

// JoobleClient pages through the Jooble search API. Unlike Adzuna the
// API is a single POST endpoint keyed by the API key in the path, and
// salaries come back as one free-text string.
type JoobleClient struct {
	client  *http.Client
	limiter *rate.Limiter
	opts    JoobleOptions
}

func NewJoobleClient(opts JoobleOptions) (*JoobleClient, error) {
	if opts.APIKey == "" {
		return nil, eris.New("collect: jooble api key not configured")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://jooble.org/api"
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 1
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &JoobleClient{
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		opts:    opts,
	}, nil
}

type joobleRequest struct {
	Keywords string `json:"keywords"`
	Location string `json:"location"`
	Page     int    `json:"page"`
}

type joobleResponse struct {
	Jobs []joobleJob `json:"jobs"`
}

type joobleJob struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Salary   string `json:"salary"`
	Snippet  string `json:"snippet"`
	Updated  string `json:"updated"`
}

// Search pages through results for the keywords until an empty page or
// maxPages.
func (c *JoobleClient) Search(ctx context.Context, keywords, location string, maxPages int) ([]normalize.RawRecord, error) {
	if maxPages <= 0 {
		maxPages = 5
	}
	if location == "" {
		location = "spain"
	}

	var records []normalize.RawRecord
	for page := 1; page <= maxPages; page++ {
		jobs, err := c.fetchPage(ctx, keywords, location, page)
		if err != nil {
			return nil, err
		}
		if len(jobs) == 0 {
			break
		}
		for _, job := range jobs {
			records = append(records, rawFromJooble(job))
		}
		zap.L().Debug("collect: jooble page fetched",
			zap.Int("page", page),
			zap.Int("offers", len(jobs)),
		)
	}

	zap.L().Info("collect: jooble search complete",
		zap.String("keywords", keywords),
		zap.Int("offers", len(records)),
	)
	return records, nil
}

func (c *JoobleClient) fetchPage(ctx context.Context, keywords, location string, page int) ([]joobleJob, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "collect: rate limiter wait")
	}

	body, err := json.Marshal(joobleRequest{Keywords: keywords, Location: location, Page: page})
	if err != nil {
		return nil, eris.Wrap(err, "collect: encode jooble request")
	}

	endpoint := fmt.Sprintf("%s/%s", c.opts.BaseURL, c.opts.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "collect: create jooble request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "collect: jooble request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("collect: jooble returned %d for page %d", resp.StatusCode, page)
	}

	var parsed joobleResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, eris.Wrap(err, "collect: decode jooble response")
	}
	return parsed.Jobs, nil
}

func rawFromJooble(job joobleJob) normalize.RawRecord {
	return normalize.RawRecord{
		"title":    job.Title,
		"company":  job.Company,
		"location": job.Location,
		"salary":   job.Salary,
		"snippet":  job.Snippet,
		"updated":  job.Updated,
	}
}
