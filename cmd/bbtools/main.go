// Package main provides the bbtools CLI: it builds the tool catalog from a definitions
// file and lists, prints or calls the tools.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/skosovsky/bbtools"
	"github.com/skosovsky/bbtools/config"
	"github.com/skosovsky/bbtools/edgar"
	"github.com/skosovsky/bbtools/filing"
	"github.com/skosovsky/bbtools/openbb"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the flag values shared by all subcommands.
type app struct {
	settings config.Settings
	strict   bool
	verbose  bool
	stderr   io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{settings: config.DefaultSettings(), stderr: stderr}
	root := &cobra.Command{
		Use:   "bbtools",
		Short: "Financial-data tools for LLM agents",
		Long: `bbtools builds agent tools from declarative definitions over the OpenBB Platform API,
plus a tool that extracts Item 1 of a company's latest 10-K filing from SEC EDGAR.

Every generic tool runs its first example at startup, so the OpenBB API must be reachable.`,
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.settings.ConfigPath, "config", a.settings.ConfigPath, "tool definitions file (env "+config.EnvConfig+")")
	flags.StringVar(&a.settings.OpenBBURL, "openbb-url", a.settings.OpenBBURL, "OpenBB Platform API base URL (env "+config.EnvOpenBBURL+")")
	flags.StringVar(&a.settings.OpenBBToken, "token", a.settings.OpenBBToken, "OpenBB personal access token (env "+config.EnvOpenBBPAT+")")
	flags.StringVar(&a.settings.OpenAPISpec, "openapi", a.settings.OpenAPISpec, "OpenAPI document to check routes against (env "+config.EnvOpenAPI+")")
	flags.StringVar(&a.settings.PromptPath, "prompt-file", a.settings.PromptPath, "file replacing the default base prompt (env "+config.EnvBasePrompt+")")
	flags.DurationVar(&a.settings.Timeout, "timeout", a.settings.Timeout, "HTTP request and tool execution timeout")
	flags.BoolVar(&a.strict, "strict", false, "generate strict argument schemas")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		toolsCmd(a),
		promptCmd(a),
		callCmd(a),
		routesCmd(a),
	)
	return root
}

func (a *app) logger() *slog.Logger {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
}

func (a *app) openbbClient(logger *slog.Logger, opts ...openbb.Option) *openbb.Client {
	opts = append([]openbb.Option{
		openbb.WithHTTPClient(&http.Client{Timeout: a.settings.Timeout}),
		openbb.WithToken(a.settings.OpenBBToken),
		openbb.WithLogger(logger),
	}, opts...)
	return openbb.NewClient(a.settings.OpenBBURL, opts...)
}

// catalog loads the definitions and builds every tool, the filing tool included.
func (a *app) catalog(ctx context.Context) (*bbtools.Catalog, error) {
	logger := a.logger()
	defs, err := config.Load(a.settings.ConfigPath)
	if err != nil {
		return nil, err
	}
	var clientOpts []openbb.Option
	if a.settings.OpenAPISpec != "" {
		// The API's own document decides which routes exist.
		doc, err := openbb.LoadSpec(ctx, a.settings.OpenAPISpec)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts, openbb.WithRoutes(openbb.SpecRoutes(doc)...))
	}
	client := a.openbbClient(logger, clientOpts...)

	extractor := filing.NewExtractor(
		filing.WithLogger(logger),
		filing.WithDownloaderFactory(func() (filing.Downloader, error) {
			return edgar.NewClient(a.settings.SECFirm, a.settings.SECUser,
				edgar.WithHTTPClient(&http.Client{Timeout: a.settings.Timeout}),
				edgar.WithLogger(logger),
			)
		}),
	)
	var toolOpts []bbtools.ToolOption
	if a.strict {
		toolOpts = append(toolOpts, bbtools.WithStrict())
	}
	item1, err := filing.NewItem1Tool(extractor, toolOpts...)
	if err != nil {
		return nil, err
	}

	opts := []bbtools.BuildOption{
		bbtools.WithLogger(logger),
		bbtools.WithFixedTools(item1),
		bbtools.WithMiddlewares(bbtools.WithRecovery(), bbtools.WithLogging(logger)),
		bbtools.WithRegistryOptions(bbtools.WithDefaultTimeout(a.settings.Timeout)),
	}
	if a.strict {
		opts = append(opts, bbtools.WithStrictSchemas())
	}
	if a.settings.PromptPath != "" {
		base, err := os.ReadFile(a.settings.PromptPath)
		if err != nil {
			return nil, fmt.Errorf("read base prompt: %w", err)
		}
		opts = append(opts, bbtools.WithBasePrompt(string(base)))
	}
	return bbtools.Build(ctx, defs, client, opts...)
}
