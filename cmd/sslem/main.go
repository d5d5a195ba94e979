// Command sslem extracts sound-scattering layers from one frequency of a
// channels file, records the features in the catalogue and renders them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/banshee-data/echomask/internal/api"
	"github.com/banshee-data/echomask/internal/config"
	"github.com/banshee-data/echomask/internal/db"
	"github.com/banshee-data/echomask/internal/echogram"
	"github.com/banshee-data/echomask/internal/report"
	"github.com/banshee-data/echomask/internal/ssl"
	"github.com/banshee-data/echomask/internal/version"
)

var (
	input       = flag.String("input", "", "Channels JSON file (required)")
	freq        = flag.Float64("freq", 0, "Frequency in kHz (0 uses the config value)")
	configPath  = flag.String("config", "", "SSLEM tuning JSON (empty uses built-in defaults)")
	dbPath      = flag.String("db", "", "SQLite catalogue to record the run in")
	pngPath     = flag.String("png", "", "Write a feature heat map PNG")
	htmlPath    = flag.String("html", "", "Write an HTML feature report")
	source      = flag.String("source", "", "Source label stored with the run (defaults to the input file name)")
	maxPoints   = flag.Int("max-points", 20000, "Maximum scatter points in the HTML report")
	listen      = flag.String("listen", "", "Serve the catalogue API and admin console on this address after extracting")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func loadConfig(path string) (*config.SSLEMConfig, error) {
	if path == "" {
		return config.DefaultSSLEMConfig(), nil
	}
	return config.LoadSSLEMConfig(path)
}

// extract runs the pipeline on the channel at freqKHz, falling back to the
// configured frequency when freqKHz is zero.
func extract(channels echogram.Provider, cfg *config.SSLEMConfig, freqKHz float64) (*ssl.Result, float64, error) {
	if freqKHz == 0 {
		freqKHz = cfg.GetFrequencyKHz()
	}
	ch, err := channels.Channel(freqKHz)
	if err != nil {
		return nil, freqKHz, fmt.Errorf("frequency %g kHz: %w", freqKHz, err)
	}
	res, err := ssl.Extract(ch.Sv, cfg.Params())
	if err != nil {
		return nil, freqKHz, err
	}
	return res, freqKHz, nil
}

func logSummaries(features []ssl.Feature) {
	for _, f := range features {
		log.Printf("feature %d: %d px, pings %d-%d, samples %d-%d, median %.2f dB, mean %.2f dB",
			f.ID, f.PixelCount, f.FirstPing, f.LastPing, f.TopSample, f.BottomSample, f.MedianSv, f.MeanSv)
	}
}

func recordRun(store *db.FeatureStore, res *ssl.Result, params ssl.Params, freqKHz float64, src string) (*db.Run, error) {
	run := &db.Run{
		Source:       src,
		FrequencyKHz: freqKHz,
		Rows:         res.Features.Rows,
		Cols:         res.Features.Cols,
		Params:       params,
	}
	if err := store.InsertRun(run, res.Summaries); err != nil {
		return nil, err
	}
	return run, nil
}

func render(res *ssl.Result, pngOut, htmlOut, title string, points int) error {
	if pngOut != "" {
		if err := report.SaveHeatmapPNG(pngOut, report.MaskHeatmap{Mask: res.Features, HideZero: true}, title); err != nil {
			return err
		}
		log.Printf("wrote %s", pngOut)
	}
	if htmlOut != "" {
		f, err := os.Create(filepath.Clean(htmlOut))
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		defer f.Close()
		if err := report.RenderFeatureReport(f, res.Features, res.Summaries, title, points); err != nil {
			return err
		}
		log.Printf("wrote %s", htmlOut)
	}
	return nil
}

func serve(ctx context.Context, addr string, d *db.DB) error {
	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewServer(db.NewFeatureStore(d.DB)).ServeMux())
	if err := d.AttachAdminRoutes(mux); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()
	log.Printf("serving catalogue on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	return nil
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String("sslem"))
		return
	}
	if *input == "" {
		log.Fatal("-input is required")
	}
	if *listen != "" && *dbPath == "" {
		log.Fatal("-listen requires -db")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	channels, err := echogram.LoadChannelsFile(*input)
	if err != nil {
		log.Fatalf("failed to load channels: %v", err)
	}

	res, freqKHz, err := extract(channels, cfg, *freq)
	if err != nil {
		log.Fatalf("extraction failed: %v", err)
	}
	if res.Empty {
		log.Printf("no features survived at %g kHz", freqKHz)
	}
	logSummaries(res.Summaries)

	label := *source
	if label == "" {
		label = filepath.Base(*input)
	}
	title := fmt.Sprintf("%s %g kHz", label, freqKHz)
	if err := render(res, *pngPath, *htmlPath, title, *maxPoints); err != nil {
		log.Fatalf("failed to render: %v", err)
	}

	if *dbPath == "" {
		return
	}
	d, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open catalogue: %v", err)
	}
	defer d.Close()

	run, err := recordRun(db.NewFeatureStore(d.DB), res, cfg.Params(), freqKHz, label)
	if err != nil {
		log.Fatalf("failed to record run: %v", err)
	}
	log.Printf("recorded run %s with %d features", run.RunID, run.FeatureCount)

	if *listen == "" {
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, *listen, d); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}
