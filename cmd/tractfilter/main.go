package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tractfilter/pkg/bundle"
	"tractfilter/pkg/config"
	"tractfilter/pkg/extraction"
	"tractfilter/pkg/phantom"
	"tractfilter/pkg/volume"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "tractfilter.yaml", "Path to the YAML configuration file")
	initConfig := flag.Bool("init-config", false, "Write the default configuration to -config and exit")
	mode := flag.String("mode", "", "Classification mode: overlap or endpoints")
	inputType := flag.String("input-type", "", "ROI semantics: scalar or label")
	overlap := flag.Float64("overlap", 0, "Minimum fraction of fiber points inside an ROI (overlap mode)")
	bothEnds := flag.Bool("both-ends", true, "Require both endpoints inside the ROI (endpoints mode)")
	interpolate := flag.Bool("interpolate", false, "Use trilinear interpolation when sampling ROIs")
	noResample := flag.Bool("no-resample", false, "Do not resample fibers before overlap classification")
	numCores := flag.Int("cores", 0, "Number of CPU cores to use (default: from config)")
	numFibers := flag.Int("fibers", 0, "Number of phantom fibers to generate (default: from config)")
	seed := flag.Uint64("seed", 0, "Phantom random seed (default: from config)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags explicitly given on the command line override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Extraction.Mode = *mode
		case "input-type":
			cfg.Extraction.InputType = *inputType
		case "overlap":
			cfg.Extraction.OverlapFraction = *overlap
		case "both-ends":
			cfg.Extraction.BothEnds = *bothEnds
		case "interpolate":
			cfg.Extraction.Interpolate = *interpolate
		case "no-resample":
			cfg.Extraction.DontResampleFibers = *noResample
		case "cores":
			cfg.Processing.NumCores = *numCores
		case "fibers":
			cfg.Phantom.NumFibers = *numFibers
		case "seed":
			cfg.Phantom.Seed = *seed
		case "verbose":
			cfg.Output.Verbose = *verbose
		}
	})

	level := zerolog.InfoLevel
	if cfg.Output.Verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	params, err := cfg.ExtractionParams()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid extraction parameters")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, cfg, params); err != nil {
		logger.Fatal().Err(err).Msg("Extraction failed")
	}
}

func run(ctx context.Context, logger zerolog.Logger, cfg *config.Config, params extraction.Params) error {
	fmt.Println("================================")
	fmt.Println("FIBER EXTRACTION BY REGION OF INTEREST")
	fmt.Println("================================")

	ph, err := phantom.Generate(cfg.PhantomOptions())
	if err != nil {
		return fmt.Errorf("failed to generate phantom: %w", err)
	}

	rois := ph.Masks
	if params.InputType == extraction.LabelMap {
		rois = []*volume.Image{ph.Labels}
	}
	logger.Info().
		Int("fibers", ph.Bundle.NumFibers()).
		Int("rois", len(rois)).
		Str("mode", params.Mode.String()).
		Str("input", params.InputType.String()).
		Msg("Phantom generated")

	filter := extraction.NewFilter(&params)
	filter.SetLogger(logger)
	filter.SetProgressCallback(newProgressPrinter())

	startTime := time.Now()
	if err := filter.Process(ctx, ph.Bundle, rois); err != nil {
		return err
	}
	processingTime := time.Since(startTime)

	out := filter.Output()
	fmt.Printf("\nExtraction completed in %.2f seconds using %d cores\n\n", processingTime.Seconds(), params.NumCores)

	printSummary("Input", ph.Bundle)
	for m, b := range out.Positives {
		printSummary(fmt.Sprintf("Positive ROI %d", m), b)
	}
	if out.Negatives != nil {
		printSummary("Negative", out.Negatives)
	}

	if matrix := out.Classification.CoOccurrence(); len(matrix) > 1 {
		fmt.Println("\nFibers positive for both ROIs:")
		for a, row := range matrix {
			cells := make([]string, len(row))
			for b, n := range row {
				cells[b] = fmt.Sprintf("%6d", n)
			}
			fmt.Printf("  ROI %d %s\n", a, strings.Join(cells, " "))
		}
	}

	if err := out.Classification.CheckPartition(); err != nil {
		return fmt.Errorf("inconsistent classification: %w", err)
	}
	return nil
}

func printSummary(name string, b *bundle.Bundle) {
	s := b.Summary()
	fmt.Printf("%-16s fibers: %6d  points: %8d  length: %7.2f ± %6.2f mm  weight: %9.2f\n",
		name, s.NumFibers, s.NumPoints, s.MeanLength, s.StdDevLength, s.TotalWeight)
}

// newProgressPrinter prints informational messages and a percentage every 10%
func newProgressPrinter() extraction.ProgressCallback {
	lastDecile := -1
	return func(completed, total int, message string) {
		if total == 0 {
			if message != "" {
				fmt.Println(message)
			}
			return
		}
		decile := completed * 10 / total
		if decile != lastDecile {
			lastDecile = decile
			fmt.Printf("\rClassifying fibers: %3d%% (%d/%d)", decile*10, completed, total)
			if completed >= total {
				fmt.Println()
			}
		}
	}
}
