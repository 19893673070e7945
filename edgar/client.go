// Package edgar downloads filings from SEC EDGAR.
//
// EDGAR requires every client to identify itself; a Client sends "<firm> <user>" as its
// User-Agent and stays under the fair-access limit of ten requests per second.
package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL serves the ticker map and the filing archives.
	DefaultBaseURL = "https://www.sec.gov"
	// DefaultDataURL serves the submissions API.
	DefaultDataURL = "https://data.sec.gov"

	// FormAnnualReport is the form type of annual reports.
	FormAnnualReport = "10-K"

	// EnvFirm and EnvUser hold the credentials read by NewClientFromEnv.
	EnvFirm = "SEC_FIRM"
	EnvUser = "SEC_USER"

	defaultTimeout    = 60 * time.Second
	defaultCacheSize  = 32
	defaultRateLimit  = rate.Limit(10)
	maxDocumentBytes  = 64 << 20
	maxMetadataBytes  = 16 << 20
	tickersPath       = "/files/company_tickers.json"
	submissionsFormat = "/submissions/CIK%s.json"
)

var (
	ErrMissingCredentials = errors.New("edgar: firm and user are required")
	ErrTickerNotFound     = errors.New("edgar: ticker not found")
	ErrFilingNotFound     = errors.New("edgar: no filing of the requested form")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("edgar: GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Filing identifies one filing document in the EDGAR archives.
type Filing struct {
	CIK             string
	AccessionNumber string
	Form            string
	FilingDate      string
	PrimaryDocument string
	URL             string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithBaseURLs replaces the www and data endpoints (used by tests and mirrors).
func WithBaseURLs(base, data string) Option {
	return func(cl *Client) {
		cl.baseURL = strings.TrimRight(base, "/")
		cl.dataURL = strings.TrimRight(data, "/")
	}
}

// WithRateLimit sets the request rate. rate.Inf disables limiting.
func WithRateLimit(r rate.Limit) Option {
	return func(cl *Client) {
		cl.limiter = rate.NewLimiter(r, 1)
	}
}

// WithCacheSize sets how many downloaded documents are kept. Values below 1 keep the default.
func WithCacheSize(n int) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.cacheSize = n
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// Client downloads filings. It is safe for concurrent use.
type Client struct {
	userAgent  string
	baseURL    string
	dataURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	cacheSize  int
	docs       *lru.Cache[string, string]

	mu      sync.Mutex
	tickers map[string]string // ticker -> zero-padded CIK
}

// NewClient creates a Client identified by firm and user (an e-mail address).
func NewClient(firm, user string, opts ...Option) (*Client, error) {
	firm, user = strings.TrimSpace(firm), strings.TrimSpace(user)
	if firm == "" || user == "" {
		return nil, ErrMissingCredentials
	}
	c := &Client{
		userAgent:  firm + " " + user,
		baseURL:    DefaultBaseURL,
		dataURL:    DefaultDataURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(defaultRateLimit, 1),
		logger:     slog.Default(),
		cacheSize:  defaultCacheSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	docs, err := lru.New[string, string](c.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("edgar: document cache: %w", err)
	}
	c.docs = docs
	return c, nil
}

// NewClientFromEnv creates a Client with the credentials in SEC_FIRM and SEC_USER.
func NewClientFromEnv(opts ...Option) (*Client, error) {
	return NewClient(os.Getenv(EnvFirm), os.Getenv(EnvUser), opts...)
}

// NormalizeTicker upper-cases ticker and writes share classes with a dash (BRK.B -> BRK-B).
func NormalizeTicker(ticker string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(ticker)), ".", "-")
}

// CIK returns the zero-padded ten-digit CIK of ticker.
func (c *Client) CIK(ctx context.Context, ticker string) (string, error) {
	tickers, err := c.loadTickers(ctx)
	if err != nil {
		return "", err
	}
	cik, ok := tickers[NormalizeTicker(ticker)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrTickerNotFound, ticker)
	}
	return cik, nil
}

func (c *Client) loadTickers(ctx context.Context) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tickers != nil {
		return c.tickers, nil
	}
	body, err := c.get(ctx, c.baseURL+tickersPath, maxMetadataBytes)
	if err != nil {
		return nil, err
	}
	var raw map[string]struct {
		CIK    int64  `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("edgar: decode ticker map: %w", err)
	}
	tickers := make(map[string]string, len(raw))
	for _, entry := range raw {
		tickers[NormalizeTicker(entry.Ticker)] = padCIK(entry.CIK)
	}
	c.tickers = tickers
	return tickers, nil
}

func padCIK(cik int64) string {
	return fmt.Sprintf("%010d", cik)
}

type submissions struct {
	Filings struct {
		Recent struct {
			AccessionNumber []string `json:"accessionNumber"`
			FilingDate      []string `json:"filingDate"`
			Form            []string `json:"form"`
			PrimaryDocument []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}

// LatestFiling returns the newest filing of form for ticker.
func (c *Client) LatestFiling(ctx context.Context, ticker, form string) (Filing, error) {
	cik, err := c.CIK(ctx, ticker)
	if err != nil {
		return Filing{}, err
	}
	body, err := c.get(ctx, c.dataURL+fmt.Sprintf(submissionsFormat, cik), maxMetadataBytes)
	if err != nil {
		return Filing{}, err
	}
	var subs submissions
	if err := json.Unmarshal(body, &subs); err != nil {
		return Filing{}, fmt.Errorf("edgar: decode submissions of %s: %w", cik, err)
	}
	recent := subs.Filings.Recent
	n := min(len(recent.AccessionNumber), len(recent.Form), len(recent.PrimaryDocument))
	// recent filings are ordered newest first
	for i := range n {
		if recent.Form[i] != form {
			continue
		}
		f := Filing{
			CIK:             cik,
			AccessionNumber: recent.AccessionNumber[i],
			Form:            recent.Form[i],
			PrimaryDocument: recent.PrimaryDocument[i],
		}
		if i < len(recent.FilingDate) {
			f.FilingDate = recent.FilingDate[i]
		}
		f.URL = c.archiveURL(f)
		return f, nil
	}
	return Filing{}, fmt.Errorf("%w: %s for %s", ErrFilingNotFound, form, ticker)
}

func (c *Client) archiveURL(f Filing) string {
	cik, err := strconv.ParseInt(f.CIK, 10, 64)
	if err != nil {
		cik = 0
	}
	return fmt.Sprintf("%s/Archives/edgar/data/%d/%s/%s",
		c.baseURL, cik, strings.ReplaceAll(f.AccessionNumber, "-", ""), f.PrimaryDocument)
}

// GetFilingHTML returns the primary document of the newest filing of form for ticker.
// Documents are cached by ticker and form.
func (c *Client) GetFilingHTML(ctx context.Context, ticker, form string) (string, error) {
	key := NormalizeTicker(ticker) + "/" + form
	if doc, ok := c.docs.Get(key); ok {
		c.logger.DebugContext(ctx, "edgar cache hit", "ticker", ticker, "form", form)
		return doc, nil
	}
	f, err := c.LatestFiling(ctx, ticker, form)
	if err != nil {
		return "", err
	}
	c.logger.InfoContext(ctx, "downloading filing", "ticker", ticker, "form", form,
		"accession", f.AccessionNumber, "date", f.FilingDate)
	body, err := c.get(ctx, f.URL, maxDocumentBytes)
	if err != nil {
		return "", err
	}
	doc := string(body)
	c.docs.Add(key, doc)
	return doc, nil
}

func (c *Client) get(ctx context.Context, url string, limit int64) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("edgar: rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("edgar: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Encoding", "identity")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("edgar: GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("edgar: read %s: %w", url, err)
	}
	return body, nil
}
