package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"TitleCatalog/internal/catalog"
	"TitleCatalog/internal/config"
	"TitleCatalog/pkg/kit"
)

const (
	service         = "catalog"
	rateLimitWindow = time.Minute
	minStemLen      = 3
)

func main() {
	// Variables already set by the runtime win over dotenv files.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	log.Info("config loaded",
		zap.String("source", cfg.Source),
		zap.String("catalog_path", cfg.Catalog.Path),
	)

	tokenizer := selectTokenizer(cfg.Search)
	synonyms := buildSynonyms(cfg.Search, log)

	start := time.Now()
	store, err := catalog.Load(cfg.Catalog.Path,
		catalog.WithTokenizer(tokenizer),
		catalog.WithSynonyms(synonyms),
	)
	if err != nil {
		var le *catalog.LoadError
		if errors.As(err, &le) {
			log.Fatal("catalog load failed", zap.String("path", le.Path), zap.Int("line", le.Line), zap.Error(le.Err))
		}
		log.Fatal("catalog load failed", zap.Error(err))
	}
	log.Info("catalog loaded",
		zap.Int("titles", store.Len()),
		zap.String("load_id", store.LoadID()),
		zap.String("tokenizer", store.TokenizerName()),
		zap.Duration("took", time.Since(start)),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &catalog.Server{Store: store, Log: log}
	if cfg.Search.RateLimitPerMin > 0 {
		s.SearchLimit = kit.NewIPRateLimiter(cfg.Search.RateLimitPerMin, rateLimitWindow)
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
	})

	if err := kit.RunHTTPServer(context.Background(), cfg.Addr(), h, log, cfg.Server.ShutdownTimeout); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func selectTokenizer(sc config.SearchConfig) catalog.Tokenizer {
	var word catalog.Tokenizer
	if sc.Tokenizer == "word" {
		word = catalog.NewWordTokenizer()
	}
	return catalog.SelectTokenizer(word)
}

// buildSynonyms never fails: an unreadable thesaurus degrades search to
// exact tokens.
func buildSynonyms(sc config.SearchConfig, log *zap.Logger) catalog.SynonymProvider {
	var ps catalog.Providers

	if sc.Synonyms {
		if sc.ThesaurusPath == "" {
			ps = append(ps, catalog.DefaultThesaurus())
		} else if t, err := catalog.LoadThesaurus(sc.ThesaurusPath); err != nil {
			log.Warn("thesaurus unavailable, using exact tokens", zap.String("path", sc.ThesaurusPath), zap.Error(err))
		} else {
			log.Info("thesaurus loaded", zap.String("path", sc.ThesaurusPath), zap.Int("words", t.Len()))
			ps = append(ps, t)
		}
	}
	if sc.Stemming {
		ps = append(ps, catalog.StemmingProvider{MinLen: minStemLen})
	}

	if len(ps) == 0 {
		return catalog.IdentityProvider{}
	}
	return ps
}
