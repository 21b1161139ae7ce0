// Command pdf-noteshrink compresses a scanned PDF by rasterizing its
// pages, reducing each page to a small high-contrast palette, and
// assembling the indexed pages back into a PDF.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"

	noteshrink "github.com/lokchonmou/pdf-noteshrink"
	"github.com/lokchonmou/pdf-noteshrink/pdfconv"
	"github.com/lokchonmou/pdf-noteshrink/utils"
)

func main() {
	output := flag.String("o", "output_noteshrink.pdf", "Output PDF file")
	numColors := flag.Int("n", 8, "Number of output colors")
	dpi := flag.Int("d", 150, "Rasterization DPI")
	valueThreshold := flag.Float64("v", 0.25, "Background value threshold")
	satThreshold := flag.Float64("s", 0.20, "Background saturation threshold")
	noSaturate := flag.Bool("no-saturate", false, "Skip palette contrast stretch")
	globalPalette := flag.Bool("g", false, "Use one palette for all pages")
	whiteBG := flag.Bool("white-bg", false, "Force the background to white")
	sampleFraction := flag.Float64("p", 0.05, "Fraction of pixels to sample")
	pdfCmd := flag.String("c", pdfconv.DefaultAssembleCmd, "PDF assembly command (%i inputs, %o output)")
	keepTemp := flag.Bool("keep-temp", false, "Keep intermediate page images")
	method := flag.String("method", "noteshrink", "Palette method: noteshrink, dominantcolor, or kmeans")
	workers := flag.Int("workers", 0, "Quantizer goroutines (0 = NumCPU)")
	seed := flag.Int64("seed", 0, "Random seed (0 = time-based)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: pdf-noteshrink [flags] input.pdf")
		flag.PrintDefaults()
		os.Exit(2)
	}
	inputPDF := flag.Arg(0)

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	opts := noteshrink.DefaultOptions()
	opts.NumColors = *numColors
	opts.ValueThreshold = *valueThreshold
	opts.SatThreshold = *satThreshold
	opts.SampleFraction = *sampleFraction
	opts.Saturate = !*noSaturate
	opts.WhiteBG = *whiteBG
	opts.GlobalPalette = *globalPalette
	opts.Workers = *workers

	if err := run(inputPDF, *output, *dpi, *pdfCmd, *method, *seed, *keepTemp, opts, log); err != nil {
		log.Fatal().Err(err).Msg("processing failed")
	}
}

func run(inputPDF, outputPDF string, dpi int, pdfCmd, method string, seed int64, keepTemp bool, opts noteshrink.Options, log zerolog.Logger) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	inputInfo, err := os.Stat(inputPDF)
	if err != nil {
		return fmt.Errorf("input PDF: %w", err)
	}
	log.Info().Str("input", inputPDF).Float64("size_mb", mb(inputInfo.Size())).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tempDir, err := os.MkdirTemp("", "noteshrink-")
	if err != nil {
		return err
	}
	if !keepTemp {
		defer os.RemoveAll(tempDir)
	} else {
		log.Info().Str("dir", tempDir).Msg("keeping temp files")
	}

	pages, err := pdfconv.Rasterize(ctx, inputPDF, tempDir, dpi)
	if err != nil {
		return err
	}
	log.Info().Int("pages", len(pages)).Int("dpi", dpi).Msg("rasterized")

	images := make([]noteshrink.PixelBuffer, len(pages))
	for i, page := range pages {
		img, err := utils.ReadImage(page)
		if err != nil {
			return err
		}
		images[i] = utils.ToPixelBuffer(img)
	}

	runner := noteshrink.NewRunner(opts)
	runner.Log = log
	runner.Progress = func(current, total int, msg string) {
		log.Info().Int("page", current).Int("total", total).Msg(msg)
	}
	if seed != 0 {
		runner.Rand = rand.New(rand.NewSource(seed))
	}
	if method != "noteshrink" {
		m, err := utils.ParsePaletteMethod(method)
		if err != nil {
			return err
		}
		if opts.GlobalPalette {
			return fmt.Errorf("palette method %s cannot be combined with a global palette", m)
		}
		runner.Extract = utils.Extractor(m)
	}

	results, err := runner.ProcessBatch(ctx, images)
	if err != nil {
		return err
	}

	outFiles := make([]string, 0, len(results))
	for i, res := range results {
		if res == nil {
			continue
		}
		path := filepath.Join(tempDir, fmt.Sprintf("processed_%04d.png", i))
		if err := utils.SaveIndexedPNG(path, res); err != nil {
			return err
		}
		outFiles = append(outFiles, path)
	}
	if len(outFiles) == 0 {
		return fmt.Errorf("no pages were processed successfully")
	}

	if err := pdfconv.Assemble(ctx, outFiles, outputPDF, pdfCmd); err != nil {
		return err
	}

	outputInfo, err := os.Stat(outputPDF)
	if err != nil {
		return fmt.Errorf("output PDF: %w", err)
	}
	reduction := 100 * (1 - float64(outputInfo.Size())/float64(inputInfo.Size()))
	log.Info().
		Str("output", outputPDF).
		Float64("size_mb", mb(outputInfo.Size())).
		Float64("reduction_pct", reduction).
		Msg("done")
	return nil
}

func mb(n int64) float64 {
	return float64(n) / (1024 * 1024)
}
