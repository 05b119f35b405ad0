// Command lexcrawl crawls legal-document sites: it discovers candidate
// URLs, learns extraction rules from examples, and drains the source queue
// through a compliant fetch and extraction pipeline.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/lexcrawl/lexcrawl"
	"github.com/lexcrawl/lexcrawl/crawl"
	"github.com/lexcrawl/lexcrawl/fs"
	"github.com/lexcrawl/lexcrawl/goquery"
	"github.com/lexcrawl/lexcrawl/htmltomarkdown"
	lexhttp "github.com/lexcrawl/lexcrawl/http"
	"github.com/lexcrawl/lexcrawl/robots"
	"github.com/lexcrawl/lexcrawl/rod"
	lexslog "github.com/lexcrawl/lexcrawl/slog"
	"github.com/lexcrawl/lexcrawl/sqlite"
	"github.com/lexcrawl/lexcrawl/toml"
	"github.com/lexcrawl/lexcrawl/trafilatura"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()
	defer m.Close()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// DB is the SQLite database behind the source queue and document
	// store. Open only for commands that need it.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("lexcrawl"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'lexcrawl --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	config := toml.DefaultConfig()
	if cli.ConfigPath != "" {
		if config, err = toml.Load(cli.ConfigPath); err != nil {
			return err
		}
	}

	logger := slog.New(slog.NewTextHandler(stderr, nil))
	deps := &Dependencies{
		Ctx:       ctx,
		Stdout:    stdout,
		Stderr:    stderr,
		Logger:    logger,
		Config:    config,
		Rules:     fs.NewRuleStore(filepath.Dir(config.RulesPath)),
		RulesName: filepath.Base(config.RulesPath),
	}

	// The rule scraper is loaded for every command; learn and extract use
	// it directly and run replays metadata rules through it.
	scraper := goquery.NewScraper()
	if rules, err := deps.Rules.Load(deps.RulesName); err == nil {
		scraper.SetRules(rules)
	} else if lexcrawl.ErrorCode(err) != lexcrawl.ENOTFOUND {
		return err
	}
	deps.Scraper = scraper

	switch cmd {
	case "run", "discover":
		m.DB = sqlite.NewDB(config.DBPath)
		if err := os.MkdirAll(filepath.Dir(config.DBPath), 0755); err != nil {
			return err
		}
		if err := m.DB.Open(); err != nil {
			return fmt.Errorf("failed to open database at %q: %w", config.DBPath, err)
		}
		deps.Sources = sqlite.NewSourceService(m.DB)
		deps.Documents = sqlite.NewDocumentService(m.DB)
	}

	switch cmd {
	case "run":
		fetcher, err := m.buildFetcher(cli, config, logger)
		if err != nil {
			return err
		}
		defer fetcher.Close()
		deps.Fetcher = fetcher
		deps.Crawler = crawl.NewCrawler(deps.Sources, deps.Documents, fetcher,
			crawl.WithScraper(deps.Scraper),
			crawl.WithExtractor(trafilatura.NewExtractor()),
			crawl.WithConverter(htmltomarkdown.NewConverter()),
			crawl.WithFetchWorkers(config.FetchWorkers),
			crawl.WithMaxRetries(config.MaxRetries),
			crawl.WithCrawlerLogger(logger),
		)
	case "discover":
		sitemaps := lexslog.NewLoggingSitemapService(lexhttp.NewSitemapService(nil), logger)
		deps.Sitemaps = sitemaps
		deps.Discoverer = crawl.NewDiscoverer(sitemaps, deps.Sources)
		deps.Discoverer.Logger = logger
	case "learn", "extract":
		deps.Fetcher = lexhttp.NewFetcher(
			lexhttp.WithHeaders(map[string]string{"User-Agent": config.UserAgent}),
		)
		defer deps.Fetcher.Close()
	}

	return kongCtx.Run(deps)
}

// buildFetcher assembles the compliant fetch path for batch runs: static
// HTTP client, robots policy, per-domain pacing, and optional browser
// escalation.
func (m *Main) buildFetcher(cli *CLI, config toml.Config, logger *slog.Logger) (lexcrawl.Fetcher, error) {
	options := []lexhttp.Option{
		lexhttp.WithHeaders(map[string]string{"User-Agent": config.UserAgent}),
	}
	if len(config.Proxies) > 0 {
		pool, err := lexhttp.NewProxyPool(config.Proxies...)
		if err != nil {
			return nil, err
		}
		options = append(options, lexhttp.WithProxyPool(pool))
	}
	static := lexhttp.NewFetcher(options...)

	if err := os.MkdirAll(config.CacheDir, 0755); err != nil {
		return nil, err
	}
	policy := lexslog.NewLoggingRobotsService(
		robots.NewService(fs.NewRobotsCache(config.CacheDir), robots.WithAgent(config.UserAgent)),
		logger,
	)
	limiter := crawl.NewDomainLimiter(config.RequestsPerSecond)

	compliance := []crawl.ComplianceOption{
		crawl.WithDetector(goquery.NewDetector()),
		crawl.WithComplianceLogger(logger),
	}
	if cli.Run.Browser {
		browser, err := rod.NewFetcher()
		if err != nil {
			return nil, fmt.Errorf("failed to start browser (is Chrome installed?): %w", err)
		}
		compliance = append(compliance, crawl.WithBrowser(browser))
	}

	return crawl.NewComplianceFetcher(static, policy, limiter, compliance...), nil
}
