// Package filing provides the tool that extracts Item 1 of a company's latest 10-K filing.
package filing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/skosovsky/bbtools"
	"github.com/skosovsky/bbtools/edgar"
	"github.com/skosovsky/bbtools/secparse"
)

const (
	// ToolName is the registered name of the Item 1 tool.
	ToolName = "get_10k_item1_from_symbol"
	// ToolDescription is its description.
	ToolDescription = "Given a stock symbol, gets item 1 of the company's latest 10-K annual report filing."

	itemPrefix = "Item"
)

var errNoItemSection = errors.New("no Item section found")

// Downloader fetches the primary document of a company's newest filing of a form.
// *edgar.Client implements it.
type Downloader interface {
	GetFilingHTML(ctx context.Context, ticker, form string) (string, error)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDownloader uses d for every extraction.
func WithDownloader(d Downloader) Option {
	return func(e *Extractor) {
		e.dl = d
	}
}

// WithDownloaderFactory sets how the downloader is created on first use.
// Default: edgar.NewClientFromEnv, which reads SEC_FIRM and SEC_USER.
func WithDownloaderFactory(fn func() (Downloader, error)) Option {
	return func(e *Extractor) {
		e.newDownloader = fn
	}
}

// WithLogger sets the logger failures are reported to. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// Extractor pulls Item 1 out of 10-K filings.
type Extractor struct {
	newDownloader func() (Downloader, error)
	logger        *slog.Logger

	mu sync.Mutex
	dl Downloader
}

// NewExtractor creates an Extractor. The downloader is created lazily, so missing
// credentials surface as a failed extraction rather than a startup error.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		newDownloader: func() (Downloader, error) { return edgar.NewClientFromEnv() },
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Item1 returns a one-element list holding the record {"item1": text} for the latest
// 10-K of symbol. On any failure it logs the error and returns bbtools.NoOutput().
func (e *Extractor) Item1(ctx context.Context, symbol string) bbtools.Output {
	text, err := e.item1Text(ctx, symbol)
	if err != nil {
		e.logger.ErrorContext(ctx, "extract 10-K item 1", "symbol", symbol, "error", err)
		return bbtools.NoOutput()
	}
	rec, err := bbtools.MarshalRecord(map[string]string{"item1": text})
	if err != nil {
		e.logger.ErrorContext(ctx, "extract 10-K item 1", "symbol", symbol, "error", err)
		return bbtools.NoOutput()
	}
	return bbtools.ListOutput([]bbtools.Record{rec})
}

func (e *Extractor) item1Text(ctx context.Context, symbol string) (string, error) {
	dl, err := e.downloader()
	if err != nil {
		return "", err
	}
	doc, err := dl.GetFilingHTML(ctx, symbol, edgar.FormAnnualReport)
	if err != nil {
		return "", err
	}
	elements, err := secparse.ParseString(doc)
	if err != nil {
		return "", err
	}
	section, ok := secparse.BuildTree(elements).FirstSection(itemPrefix)
	if !ok {
		return "", errNoItemSection
	}
	return section.SectionText(), nil
}

func (e *Extractor) downloader() (Downloader, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dl != nil {
		return e.dl, nil
	}
	dl, err := e.newDownloader()
	if err != nil {
		return nil, fmt.Errorf("create downloader: %w", err)
	}
	e.dl = dl
	return dl, nil
}

// Func adapts Item1 to a bbtools.Func taking a "symbol" argument. It never returns an error.
func (e *Extractor) Func() bbtools.Func {
	return func(ctx context.Context, args map[string]any) (bbtools.Output, error) {
		symbol, ok := args["symbol"].(string)
		if !ok {
			e.logger.ErrorContext(ctx, "extract 10-K item 1", "error", "symbol argument missing")
			return bbtools.NoOutput(), nil
		}
		return e.Item1(ctx, symbol), nil
	}
}

// NewItem1Tool builds the get_10k_item1_from_symbol tool over SymbolSchema.
func NewItem1Tool(e *Extractor, opts ...bbtools.ToolOption) (bbtools.Tool, error) {
	schema, err := bbtools.LookupSchema(bbtools.SymbolSchemaName, opts...)
	if err != nil {
		return nil, err
	}
	return bbtools.NewFuncTool(ToolName, ToolDescription, schema, e.Func(), opts...)
}
