// Package app wires the download, analysis, retrieval and reporting services
// into one runnable pipeline.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/shortwatch/internal/common"
	"github.com/ternarybob/shortwatch/internal/consob"
	"github.com/ternarybob/shortwatch/internal/models"
	"github.com/ternarybob/shortwatch/internal/services/analyzer"
	"github.com/ternarybob/shortwatch/internal/services/embeddings"
	"github.com/ternarybob/shortwatch/internal/services/llm"
	"github.com/ternarybob/shortwatch/internal/services/news"
	"github.com/ternarybob/shortwatch/internal/services/rag"
	"github.com/ternarybob/shortwatch/internal/services/report"
	"github.com/ternarybob/shortwatch/internal/services/vectorstore"
	badgerstore "github.com/ternarybob/shortwatch/internal/storage/badger"
)

// App holds the assembled pipeline.
type App struct {
	config   *common.Config
	logger   arbor.ILogger
	consob   *consob.Client
	analyzer *analyzer.Service
	rag      *rag.Service
	reporter *report.Reporter
	db       *badgerstore.BadgerDB // nil unless persistence is enabled
}

// Option configures the App.
type Option func(*options)

type options struct {
	out io.Writer
}

// WithOutput redirects report output away from stdout.
func WithOutput(out io.Writer) Option {
	return func(o *options) {
		o.out = out
	}
}

// New validates the configuration and constructs every service. Construction
// fails fast: a missing credential or unreachable database surfaces here, not
// mid-pipeline.
func New(ctx context.Context, config *common.Config, logger arbor.ILogger, opts ...Option) (*App, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := &options{out: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	consobClient := consob.NewClient(
		config.Consob.URL,
		config.Consob.DestDir,
		consob.WithLogger(logger),
		consob.WithHTTPClient(&http.Client{
			Timeout: common.DurationOr(config.Consob.RequestTimeout, consob.DefaultTimeout),
		}),
	)

	newsClient := news.NewClient(
		config.News.Endpoint,
		config.News.APIKey,
		news.WithLogger(logger),
		news.WithHTTPClient(&http.Client{
			Timeout: common.DurationOr(config.News.RequestTimeout, news.DefaultTimeout),
		}),
		news.WithRateLimit(config.News.RateLimit),
	)

	embedder, err := embeddings.NewService(ctx, &config.Gemini, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding service: %w", err)
	}

	provider, err := llm.NewProvider(config, logger)
	if err != nil {
		return nil, err
	}

	store := vectorstore.NewStore(logger)

	var db *badgerstore.BadgerDB
	var articles rag.ArticleStore
	if config.Storage.Persist {
		db, err = badgerstore.NewBadgerDB(logger, &config.Storage.Badger)
		if err != nil {
			return nil, fmt.Errorf("failed to open article store: %w", err)
		}
		articles = badgerstore.NewArticleStorage(db, logger)
	}

	ragService := rag.NewService(&config.RAG, embedder, newsClient, provider, store, articles, logger)

	if config.Storage.Persist {
		if _, err := ragService.ReplayPersisted(); err != nil {
			if db != nil {
				db.Close()
			}
			return nil, err
		}
	}

	return &App{
		config:   config,
		logger:   logger,
		consob:   consobClient,
		analyzer: analyzer.NewService(logger),
		rag:      ragService,
		reporter: report.NewReporter(o.out),
		db:       db,
	}, nil
}

// Run executes one full analysis: download the spreadsheet, diff positions
// against the publication date, print the tables, then retrieve news and
// print the generated explanation. Download, parse and inference failures
// abort the run.
func (a *App) Run(ctx context.Context) error {
	workbook, err := a.consob.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("spreadsheet download failed: %w", err)
	}

	result := a.analyzer.Analyze(workbook.Current, workbook.Historical, workbook.PublicationDate)

	if err := a.reporter.WriteAnalysis(result); err != nil {
		return fmt.Errorf("failed to write analysis tables: %w", err)
	}

	company := a.companyForExplanation(result)

	explanation, err := a.rag.Explain(ctx, company)
	if err != nil {
		return err
	}

	return a.reporter.WriteExplanation(company, explanation)
}

// companyForExplanation picks the company to explain: the issuer of the first
// new position, else the first aggregated asset, else the configured default.
func (a *App) companyForExplanation(result *models.AnalysisResult) string {
	if len(result.NewPositions) > 0 && result.NewPositions[0].Issuer != "" {
		return result.NewPositions[0].Issuer
	}
	if len(result.ByAsset) > 0 && result.ByAsset[0].Issuer != "" {
		return result.ByAsset[0].Issuer
	}

	a.logger.Warn().
		Str("fallback", a.config.RAG.DefaultSymbol).
		Msg("Analysis yielded no issuer, using configured default symbol")

	return a.config.RAG.DefaultSymbol
}

// Close releases held resources.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
