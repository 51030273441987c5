package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/laborlens/jobmarket-cli/internal/normalize"
)

// AdzunaColumns is the column order of the real-api raw CSV.
var AdzunaColumns = []string{
	"title", "company", "location", "salary_min", "salary_max",
	"contract_type", "contract_time", "description", "created",
}

// AdzunaOptions configures the Adzuna API client.
type AdzunaOptions struct {
	AppID      string
	APIKey     string
	BaseURL    string
	Country    string
	PerPage    int
	RatePerSec float64
	Timeout    time.Duration
}

// AdzunaClient pages through the Adzuna job search API under a shared
// rate limit.
type AdzunaClient struct {
	client  *http.Client
	limiter *rate.Limiter
	opts    AdzunaOptions
}

func NewAdzunaClient(opts AdzunaOptions) (*AdzunaClient, error) {
	if opts.AppID == "" || opts.APIKey == "" {
		return nil, eris.New("collect: adzuna credentials not configured")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.adzuna.com/v1/api"
	}
	if opts.Country == "" {
		opts.Country = "es"
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 50
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 2
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &AdzunaClient{
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		opts:    opts,
	}, nil
}

type adzunaResponse struct {
	Results []adzunaJob `json:"results"`
}

type adzunaJob struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	SalaryMin    *float64 `json:"salary_min"`
	SalaryMax    *float64 `json:"salary_max"`
	ContractType string   `json:"contract_type"`
	ContractTime string   `json:"contract_time"`
	Created      string   `json:"created"`
	Company      struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
}

// Search fetches offers for the query across the given locations, one
// goroutine per location, each paging until an empty page or maxPages.
func (c *AdzunaClient) Search(ctx context.Context, what string, locations []string, maxPages int) ([]normalize.RawRecord, error) {
	if maxPages <= 0 {
		maxPages = 5
	}
	if len(locations) == 0 {
		locations = []string{""}
	}

	var mu sync.Mutex
	var all []normalize.RawRecord

	g, ctx := errgroup.WithContext(ctx)
	for _, location := range locations {
		g.Go(func() error {
			records, err := c.searchLocation(ctx, what, location, maxPages)
			if err != nil {
				return err
			}
			mu.Lock()
			all = append(all, records...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("collect: adzuna search complete",
		zap.String("what", what),
		zap.Int("locations", len(locations)),
		zap.Int("offers", len(all)),
	)
	return all, nil
}

func (c *AdzunaClient) searchLocation(ctx context.Context, what, location string, maxPages int) ([]normalize.RawRecord, error) {
	var records []normalize.RawRecord

	for page := 1; page <= maxPages; page++ {
		jobs, err := c.fetchPage(ctx, what, location, page)
		if err != nil {
			return nil, err
		}
		if len(jobs) == 0 {
			break
		}
		for _, job := range jobs {
			records = append(records, rawFromAdzuna(job))
		}
		zap.L().Debug("collect: adzuna page fetched",
			zap.String("where", location),
			zap.Int("page", page),
			zap.Int("offers", len(jobs)),
		)
	}
	return records, nil
}

func (c *AdzunaClient) fetchPage(ctx context.Context, what, location string, page int) ([]adzunaJob, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "collect: rate limiter wait")
	}

	endpoint := fmt.Sprintf("%s/jobs/%s/search/%d", c.opts.BaseURL, c.opts.Country, page)
	params := url.Values{}
	params.Set("app_id", c.opts.AppID)
	params.Set("app_key", c.opts.APIKey)
	params.Set("results_per_page", strconv.Itoa(c.opts.PerPage))
	params.Set("what", what)
	if location != "" {
		params.Set("where", location)
	}
	params.Set("salary_include_unknown", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "collect: create adzuna request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "collect: adzuna request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("collect: adzuna returned %d for page %d", resp.StatusCode, page)
	}

	var parsed adzunaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, eris.Wrap(err, "collect: decode adzuna response")
	}
	return parsed.Results, nil
}

// rawFromAdzuna flattens an API result into the raw column layout the
// normalizer's real-api adapter expects.
func rawFromAdzuna(job adzunaJob) normalize.RawRecord {
	raw := normalize.RawRecord{
		"title":         job.Title,
		"company":       job.Company.DisplayName,
		"location":      job.Location.DisplayName,
		"contract_type": job.ContractType,
		"contract_time": job.ContractTime,
		"description":   job.Description,
		"created":       job.Created,
	}
	if job.SalaryMin != nil {
		raw["salary_min"] = strconv.FormatFloat(*job.SalaryMin, 'f', -1, 64)
	}
	if job.SalaryMax != nil {
		raw["salary_max"] = strconv.FormatFloat(*job.SalaryMax, 'f', -1, 64)
	}
	return raw
}
