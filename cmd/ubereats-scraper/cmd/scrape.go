package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"ubereats-scraper/internal/archive"
	"ubereats-scraper/internal/components/chrono"
	"ubereats-scraper/internal/components/telemetry"
	"ubereats-scraper/internal/offers"
	"ubereats-scraper/internal/scrapers/ubereats"
	"ubereats-scraper/lib/restyutil"
	"ubereats-scraper/lib/serviceutil"

	"github.com/spf13/cobra"
)

type scrapeFlags struct {
	city     string
	region   string
	output   string
	config   string
	db       string
	dumpHttp string
	schedule string
	maxPages int
	sample   int
	extended bool
}

var scrapeOpts scrapeFlags

func init() {
	flags := scrapeCmd.Flags()
	flags.StringVarP(&scrapeOpts.city, "city", "c", "", "City to scrape, ex. Edmonton.")
	flags.StringVarP(&scrapeOpts.region, "state", "s", "", "State or province, as a two-letter code or a full name.")
	flags.StringVarP(&scrapeOpts.output, "output", "o", "", "Where to write the result (default from config, final_result.json).")
	flags.StringVar(&scrapeOpts.config, "config", DefaultConfigFile, "Config file, a .local variant next to it overrides it.")
	flags.StringVar(&scrapeOpts.db, "db", "", "Also archive the run into this sqlite database.")
	flags.StringVar(&scrapeOpts.dumpHttp, "dump-http", "", "Write every HTTP exchange into this directory.")
	flags.IntVar(&scrapeOpts.maxPages, "max-pages", 0, "Maximum number of feed pages (default from config, 25).")
	flags.IntVar(&scrapeOpts.sample, "sample", 10, "Number of restaurants to print once done.")
	flags.BoolVar(&scrapeOpts.extended, "extended", false, "Also write price range, badges and store url.")
	flags.StringVar(&scrapeOpts.schedule, "schedule", "", "Scrape now and again on this cron schedule (ex. \"@every 6h\") until interrupted, pair it with --db.")
	_ = scrapeCmd.MarkFlagRequired("city")
	_ = scrapeCmd.MarkFlagRequired("state")

	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape --city <city> --state <region>",
	Short: "Fetch every restaurant of the delivery feed for a city and write them as JSON.",
	Example: `  UBER_EATS_COOKIES="jwt-session=xxx; uev2.loc=yyy" ubereats-scraper scrape --city Edmonton --state AB
  ubereats-scraper scrape -c Toronto -s ontario -o toronto.json --extended`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run := runScrape
		if scrapeOpts.schedule != "" {
			run = runScheduled
		}
		err := run(cmd.Context(), scrapeOpts, cmd.OutOrStdout())
		if err != nil {
			serviceutil.Fatal("scrape failed", err)
		}
	},
}

// runScrape writes the output file only once the whole feed was fetched.
func runScrape(ctx context.Context, flags scrapeFlags, stdout io.Writer) error {
	cfg, err := LoadConfig(flags.config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flags.output != "" {
		cfg.Output = flags.output
	}
	if flags.maxPages > 0 {
		cfg.MaxPages = flags.maxPages
	}

	var dump restyutil.InstrumentOutput
	if flags.dumpHttp != "" {
		out, err := restyutil.NewFilesystemOutput(flags.dumpHttp)
		if err != nil {
			return err
		}
		dump = out
	}

	slog.Info("scraping", "city", flags.city, "region", flags.region)
	result, stats, err := ubereats.Scrape(ctx, ubereats.ScrapeRequest{
		Cookies: cfg.ResolveCookies(),
		City:    flags.city,
		Region:  flags.region,
		Client:  cfg.ClientOptions(dump),
		Pager:   cfg.PagerOptions(),
		Tel:     telemetry.SlogAPI{},
	})
	if err != nil {
		return err
	}

	err = result.Write(cfg.Output, offers.WriteOptions{Extended: flags.extended})
	if err != nil {
		return err
	}
	slog.Info(
		"result written",
		"path", cfg.Output,
		"restaurants", stats.Restaurants,
		"listings", stats.Listings,
		"pages", stats.Pages,
	)

	if flags.db != "" {
		if err := archiveRun(ctx, flags.db, stats, result); err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
	}

	if len(result) == 0 {
		fmt.Fprintf(stdout, "No restaurants deliver to %s.\n", stats.Location)
		return nil
	}
	if flags.sample > 0 {
		result.Summary(stdout, flags.sample)
	}
	return nil
}

func archiveRun(ctx context.Context, path string, stats ubereats.ScrapeStats, result offers.Result) error {
	store, err := archive.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Save(ctx, archive.Run{
		City:       stats.Location.City,
		Region:     stats.Location.Region.Code,
		StartedAt:  stats.StartedAt,
		FinishedAt: stats.FinishedAt,
		Pages:      stats.Pages,
	}, result)
	if err != nil {
		return err
	}
	slog.Info("run archived", "db", path, "run_id", id)
	return nil
}

// runScheduled repeats runScrape until the context is cancelled or a run
// fails, each run overwrites the output file.
func runScheduled(ctx context.Context, flags scrapeFlags, stdout io.Writer) error {
	return schedule(ctx, chrono.NewStandardCron(telemetry.SlogAPI{}), flags.schedule, func() error {
		return runScrape(ctx, flags, stdout)
	})
}

// schedule runs once right away, then on every tick of `spec`.
func schedule(ctx context.Context, cron chrono.CronAPI, spec string, run func() error) error {
	defer cron.Stop()

	if err := run(); err != nil {
		return err
	}

	failed := make(chan error, 1)
	err := cron.Cron(spec, func() {
		if err := run(); err != nil {
			select {
			case failed <- err:
			default:
			}
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	slog.Info("scrape scheduled", "schedule", spec)

	select {
	case <-ctx.Done():
		return nil
	case err := <-failed:
		return err
	}
}
