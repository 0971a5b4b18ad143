package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pricetracker/internal/app"
	"pricetracker/internal/config"
	"pricetracker/internal/logging"
)

func main() {
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", "", "path to YAML config (overrides PRICETRACKER_CONFIG)")
		once       = flag.Bool("once", false, "run a single sweep and exit")
		addURL     = flag.String("add", "", "track a product page url and exit")
		threshold  = flag.Float64("threshold", 0, "alert price for -add (0 = current price)")
		list       = flag.Bool("list", false, "print tracked products and exit")
		remove     = flag.String("remove", "", "untrack a product by url or id and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Without flags the daemon runs the recurring price sweep.")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Load()
	if *configPath != "" {
		cfg = config.LoadPath(*configPath)
	}
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	switch {
	case *addURL != "":
		product, err := application.Tracker().Track(ctx, *addURL, *threshold)
		if err != nil {
			logger.Error("track product", "url", *addURL, "error", err)
			os.Exit(1)
		}
		fmt.Printf("tracking %q at %.2f (alert at %.2f)\n", product.Title, product.CurrentPrice, product.Threshold)

	case *remove != "":
		if err := application.Tracker().Untrack(ctx, *remove); err != nil {
			logger.Error("untrack product", "key", *remove, "error", err)
			os.Exit(1)
		}
		fmt.Printf("stopped tracking %s\n", *remove)

	case *list:
		products, err := application.Tracker().Refresh(ctx)
		if err != nil {
			logger.Error("list products", "error", err)
			os.Exit(1)
		}
		if len(products) == 0 {
			fmt.Println("no tracked products")
			return
		}
		for _, p := range products {
			fmt.Printf("%-60s %10.2f  alert %.2f\n", p.Title, p.CurrentPrice, p.Threshold)
		}

	case *once:
		if err := application.RunOnce(ctx); err != nil {
			logger.Error("sweep failed", "error", err)
			os.Exit(1)
		}

	default:
		if err := application.Run(ctx); err != nil {
			logger.Error("application stopped", "error", err)
			os.Exit(1)
		}
	}
}
