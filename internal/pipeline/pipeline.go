// Package pipeline orchestrates a full batch run: fetch income statistics
// and job ads, aggregate, enrich, and publish the parquet tables.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"arbetsdata/internal/aggregate"
	"arbetsdata/internal/cache"
	"arbetsdata/internal/config"
	"arbetsdata/internal/enrich"
	"arbetsdata/internal/source/jobads"
	"arbetsdata/internal/source/scb"
	"arbetsdata/internal/store"
	"arbetsdata/internal/taxonomy"
	"arbetsdata/internal/warehouse"
)

// Options select what a run fetches and which optional steps execute.
type Options struct {
	Years     []string
	SSYKCodes []string
	MaxAds    int
	Enrich    bool
	UploadGCS bool
}

func (o Options) withDefaults() Options {
	if len(o.Years) == 0 {
		o.Years = []string{"2023"}
	}
	if len(o.SSYKCodes) == 0 {
		o.SSYKCodes = taxonomy.DefaultSSYKCodes
	}
	return o
}

// Pipeline holds the clients a run needs. Steps are sequential; the
// upstream APIs throttle hard enough that concurrency buys nothing.
type Pipeline struct {
	cfg      config.Config
	logger   *log.Logger
	scb      *scb.Client
	ads      *jobads.Client
	taxo     *jobads.TaxonomyClient
	enricher *enrich.Client
	fetcher  *taxonomy.Fetcher
	sink     *store.Sink

	// liveLabels supplements the static occupation map with labels fetched
	// from the taxonomy API; populated per run.
	liveLabels map[string]string
}

func New(cfg config.Config, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		cfg:      cfg,
		logger:   logger,
		scb:      scb.NewClient(cfg.SCB.BaseURL, cfg.SCB.APIKey, cfg.SCB.MinInterval, cfg.SCB.Timeout, nil, logger),
		ads:      jobads.NewClient(cfg.JobAds.HistoricalBaseURL, cfg.JobAds.MinInterval, cfg.JobAds.Timeout, nil, logger),
		taxo:     jobads.NewTaxonomyClient(cfg.JobAds.TaxonomyBaseURL, cfg.JobAds.Timeout, nil, logger),
		enricher: enrich.NewClient(cfg.Enrich.BaseURL, enrichOptions(cfg.Enrich), nil, logger),
		fetcher:  taxonomy.NewFetcher(cfg.Data.RawDir, nil, logger),
		sink:     store.NewSink(cfg.Data.DataDir, logger),
	}
}

func enrichOptions(cfg config.EnrichConfig) enrich.Options {
	return enrich.Options{
		BatchSize:   cfg.BatchSize,
		Threshold:   cfg.Threshold,
		MinTextLen:  cfg.MinTextLen,
		MaxTextLen:  cfg.MaxTextLen,
		MinInterval: cfg.MinInterval,
		Timeout:     cfg.Timeout,
	}
}

// step runs one named unit of work with uniform logging. Fatal steps abort
// the run; the rest degrade to whatever was produced so far.
func (p *Pipeline) step(runID, name string, fatal bool, fn func() error) error {
	start := time.Now()
	p.logger.Printf("pipeline=labor run=%s step=%s status=started", runID, name)

	if err := fn(); err != nil {
		if fatal {
			p.logger.Printf("pipeline=labor run=%s step=%s status=failed fatal=true err=%v", runID, name, err)
			return fmt.Errorf("pipeline step %s: %w", name, err)
		}
		p.logger.Printf("pipeline=labor run=%s step=%s status=degraded err=%v", runID, name, err)
		return nil
	}

	p.logger.Printf("pipeline=labor run=%s step=%s status=ok elapsed=%s", runID, name, time.Since(start))
	return nil
}

// Run executes the pipeline. Income and job-ads fetches plus the final
// persist are run-aborting; dispersion, breakdowns, taxonomy, enrichment,
// warehouse and upload degrade with a log line.
func (p *Pipeline) Run(ctx context.Context, opts Options) error {
	opts = opts.withDefaults()
	runID := uuid.NewString()
	p.logger.Printf("pipeline=labor run=%s status=started years=%v ssyk=%v", runID, opts.Years, opts.SSYKCodes)

	var (
		incomeRows      []store.IncomeRow
		dispersionRows  []store.DispersionRow
		ageRows         []store.IncomeByAgeRow
		educationRows   []store.IncomeByEducationRow
		allAds          []jobads.JobAd
		aggregatedRows  []store.JobsAggregatedRow
		topEmployerRows []store.TopEmployerRow
		skillRows       []store.SkillRow
	)

	_ = p.step(runID, "occupation_labels", false, func() error {
		concepts, err := p.taxo.SSYKCodes(ctx)
		if err != nil {
			return err
		}
		p.liveLabels = make(map[string]string, len(concepts))
		for _, c := range concepts {
			if c.SSYKCode != "" {
				p.liveLabels[c.SSYKCode] = c.Label
			}
		}
		return nil
	})

	if err := p.step(runID, "income_fetch", true, func() error {
		rows, err := p.fetchIncome(ctx, opts)
		if err != nil {
			return err
		}
		incomeRows = rows
		return nil
	}); err != nil {
		return err
	}

	_ = p.step(runID, "income_dispersion", false, func() error {
		rows, err := p.fetchDispersion(ctx, opts)
		if err != nil {
			return err
		}
		dispersionRows = rows
		return nil
	})

	_ = p.step(runID, "income_by_age", false, func() error {
		rows, err := p.fetchIncomeByAge(ctx, opts)
		if err != nil {
			return err
		}
		ageRows = rows
		return nil
	})

	_ = p.step(runID, "income_by_education", false, func() error {
		rows, err := p.fetchIncomeByEducation(ctx, opts)
		if err != nil {
			return err
		}
		educationRows = rows
		return nil
	})

	if err := p.step(runID, "jobs_fetch", true, func() error {
		ads, err := p.fetchAds(ctx, opts)
		if err != nil {
			return err
		}
		allAds = ads
		return nil
	}); err != nil {
		return err
	}

	_ = p.step(runID, "jobs_aggregate", false, func() error {
		buckets := aggregate.JobsByRegion(allAds, aggregate.ByYearMonth, p.logger)
		aggregatedRows = make([]store.JobsAggregatedRow, 0, len(buckets))
		for _, b := range buckets {
			aggregatedRows = append(aggregatedRows, store.NewJobsAggregatedRow(b))
		}
		employers := aggregate.TopEmployers(allAds, 100)
		topEmployerRows = make([]store.TopEmployerRow, 0, len(employers))
		for _, e := range employers {
			topEmployerRows = append(topEmployerRows, store.NewTopEmployerRow(e))
		}
		return nil
	})

	_ = p.step(runID, "taxonomy_skills", false, func() error {
		rows, err := p.buildEscoSkills(ctx, opts)
		if err != nil {
			return err
		}
		skillRows = append(skillRows, rows...)
		return nil
	})

	if opts.Enrich {
		_ = p.step(runID, "enrichment", false, func() error {
			mentions := p.enricher.EnrichAds(ctx, allAds)
			for _, s := range enrich.AggregateSkills(mentions, allAds) {
				skillRows = append(skillRows, store.NewSkillRow(s))
			}
			return nil
		})
	}

	if err := p.step(runID, "persist", true, func() error {
		return p.persist(incomeRows, dispersionRows, ageRows, educationRows, allAds, aggregatedRows, topEmployerRows, skillRows)
	}); err != nil {
		return err
	}

	if p.cfg.Database.Enabled() {
		_ = p.step(runID, "warehouse", false, func() error {
			return p.mirrorToWarehouse(ctx, incomeRows, allAds)
		})
	}

	if opts.UploadGCS && p.cfg.GCS.Upload {
		_ = p.step(runID, "gcs_upload", false, func() error {
			uploader, err := store.NewUploader(ctx, p.cfg.GCS.Bucket, p.cfg.GCS.Prefix, p.logger)
			if err != nil {
				return err
			}
			defer uploader.Close()
			return uploader.UploadDir(ctx, p.sink.Dir())
		})
	}

	_ = p.step(runID, "cache_flush", false, func() error {
		r := cache.NewRedis(p.cfg.Redis, p.logger)
		return r.FlushTables(ctx, "api:")
	})

	p.logger.Printf("pipeline=labor run=%s status=finished income=%d ads=%d skills=%d",
		runID, len(incomeRows), len(allAds), len(skillRows))
	return nil
}

// occupationLabel prefers the built-in SSYK map and falls back to labels
// fetched from the taxonomy API this run.
func (p *Pipeline) occupationLabel(code string) string {
	static := taxonomy.Occupations()
	if static.Has(code) {
		return static.Resolve(code)
	}
	if label, ok := p.liveLabels[code]; ok {
		return label
	}
	return static.Resolve(code)
}

func (p *Pipeline) fetchAds(ctx context.Context, opts Options) ([]jobads.JobAd, error) {
	after, before := publicationWindow(opts.Years)

	var all []jobads.JobAd
	for _, code := range opts.SSYKCodes {
		ads, err := p.ads.FetchPeriod(ctx, code, after, before, opts.MaxAds)
		if err != nil {
			return nil, err
		}
		all = append(all, ads...)
	}

	// Older ads sometimes carry only the region concept ID. Backfill the
	// name from the taxonomy so the aggregates group on something readable.
	missing := 0
	for i := range all {
		if all[i].Region == "" && all[i].RegionCode != "" {
			missing++
		}
	}
	if missing > 0 {
		names := make(map[string]string)
		for _, r := range p.taxo.Regions(ctx) {
			names[r.ConceptID] = r.Name
		}
		for i := range all {
			if all[i].Region == "" {
				all[i].Region = names[all[i].RegionCode]
			}
		}
	}
	return all, nil
}

// publicationWindow spans the earliest to the latest requested year.
func publicationWindow(years []string) (after, before string) {
	min, max := years[0], years[0]
	for _, y := range years[1:] {
		if y < min {
			min = y
		}
		if y > max {
			max = y
		}
	}
	return min + "-01-01T00:00:00", max + "-12-31T23:59:59"
}

func (p *Pipeline) persist(
	income []store.IncomeRow,
	dispersion []store.DispersionRow,
	age []store.IncomeByAgeRow,
	education []store.IncomeByEducationRow,
	ads []jobads.JobAd,
	aggregated []store.JobsAggregatedRow,
	employers []store.TopEmployerRow,
	skills []store.SkillRow,
) error {
	adRows := make([]store.JobAdRow, 0, len(ads))
	for _, ad := range ads {
		adRows = append(adRows, store.NewJobAdRow(ad))
	}

	if err := store.WriteTable(p.sink, store.TableIncome, income); err != nil {
		return err
	}
	if err := store.WriteTable(p.sink, store.TableIncomeDispersion, dispersion); err != nil {
		return err
	}
	if err := store.WriteTable(p.sink, store.TableIncomeByAge, age); err != nil {
		return err
	}
	if err := store.WriteTable(p.sink, store.TableIncomeByEducation, education); err != nil {
		return err
	}
	if err := store.WriteTable(p.sink, store.TableJobsDetail, adRows); err != nil {
		return err
	}
	if err := store.WriteTable(p.sink, store.TableJobsAggregated, aggregated); err != nil {
		return err
	}
	if err := store.WriteTable(p.sink, store.TableTopEmployers, employers); err != nil {
		return err
	}
	return store.WriteTable(p.sink, store.TableSkills, skills)
}

func (p *Pipeline) mirrorToWarehouse(ctx context.Context, income []store.IncomeRow, ads []jobads.JobAd) error {
	db, err := warehouse.Connect(ctx, p.cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := warehouse.EnsureSchema(ctx, db); err != nil {
		return err
	}
	if _, err := warehouse.UpsertIncome(ctx, db, income); err != nil {
		return err
	}

	adRows := make([]store.JobAdRow, 0, len(ads))
	for _, ad := range ads {
		adRows = append(adRows, store.NewJobAdRow(ad))
	}
	_, err = warehouse.UpsertJobAds(ctx, db, adRows)
	return err
}
