// Command discover runs a contact discovery search from the terminal.
//
//	discover [-country ZA] [-provider apollo] [-format json|text] query...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/octobees/contact-discovery/internal/app"
	"github.com/octobees/contact-discovery/internal/config"
	"github.com/octobees/contact-discovery/internal/dto"
	"github.com/octobees/contact-discovery/internal/entity"
)

type options struct {
	country  string
	provider string
	format   string
	query    string
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("discover", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.country, "country", "", "two-letter country code (defaults to DEFAULT_COUNTRY)")
	fs.StringVar(&opts.provider, "provider", "", "run a single provider instead of the deep search")
	fs.StringVar(&opts.format, "format", "text", "output format: json or text")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.query = strings.TrimSpace(strings.Join(fs.Args(), " "))
	opts.format = strings.ToLower(strings.TrimSpace(opts.format))
	if opts.query == "" {
		return opts, fmt.Errorf("a search query is required")
	}
	if opts.format != "json" && opts.format != "text" {
		return opts, fmt.Errorf("unsupported format %q", opts.format)
	}
	return opts, nil
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		log.Fatalf("discover: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise discovery", zap.Error(err))
	}
	defer components.Close()

	q, err := components.Queries.Normalize(dto.DiscoveryRequest{Query: opts.query, Country: opts.country})
	if err != nil {
		logger.Fatal("invalid query", zap.Error(err))
	}

	if opts.provider != "" {
		result, err := components.Discovery.SearchProvider(ctx, opts.provider, q.Query, q.Country)
		if err != nil {
			logger.Fatal("provider search failed", zap.Error(err))
		}
		if err := renderPipeline(os.Stdout, opts.format, result); err != nil {
			logger.Fatal("render failed", zap.Error(err))
		}
		return
	}

	result := components.Discovery.RunDeepSearch(ctx, q.Query, q.Country)
	if err := renderDeepSearch(os.Stdout, opts.format, result); err != nil {
		logger.Fatal("render failed", zap.Error(err))
	}
}

func renderPipeline(w io.Writer, format string, result entity.PipelineResult) error {
	if format == "json" {
		return writeJSON(w, result)
	}
	fmt.Fprintf(w, "%s: %d contacts (native API used: %t)\n\n", result.Source, result.Total, result.APIUsed)
	if err := writeContacts(w, result.Contacts); err != nil {
		return err
	}
	return writeLogs(w, result.Logs)
}

func renderDeepSearch(w io.Writer, format string, result entity.DeepSearchResult) error {
	if format == "json" {
		return writeJSON(w, result)
	}
	fmt.Fprintf(w, "%d contacts\nnative APIs: %s\nfallbacks:   %s\n\n",
		result.Total, listOrNone(result.APIsUsed), listOrNone(result.APIsUnavailable))
	if err := writeContacts(w, result.Contacts); err != nil {
		return err
	}
	return writeLogs(w, result.Logs)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeContacts(w io.Writer, contacts []entity.Contact) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONFIDENCE\tNAME\tTITLE\tCOMPANY\tEMAIL\tSOURCE")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Confidence, c.Name, dash(c.Title), dash(c.Company), dash(c.Email), c.Source)
	}
	return tw.Flush()
}

func writeLogs(w io.Writer, logs []string) error {
	if len(logs) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "\nlog:"); err != nil {
		return err
	}
	for _, line := range logs {
		if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
