// Command composite registers threshold masks for several frequencies and
// combines them on a reference frequency's grid.
package main

import (
	"flag"
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"

	"github.com/banshee-data/echomask/internal/echogram"
	"github.com/banshee-data/echomask/internal/mask"
	"github.com/banshee-data/echomask/internal/report"
	"github.com/banshee-data/echomask/internal/version"
)

var (
	input       = flag.String("input", "", "Channels JSON file (required)")
	ref         = flag.Float64("ref", 38, "Reference frequency in kHz; must appear in -thresholds")
	thresholds  = flag.String("thresholds", "38:-70", "Comma-separated freq:threshold_dB pairs, in bit order")
	modeName    = flag.String("mode", "pa", "Composite mode: pa or bitwise")
	pngPath     = flag.String("png", "", "Write the composite as a heat map PNG")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// parseThresholds parses "38:-70,120:-65" into threshold parameters,
// keeping the order given.
func parseThresholds(s string) ([]mask.ThresholdParams, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("no thresholds given")
	}
	parts := strings.Split(s, ",")
	out := make([]mask.ThresholdParams, 0, len(parts))
	for _, p := range parts {
		freqStr, thStr, ok := strings.Cut(strings.TrimSpace(p), ":")
		if !ok {
			return nil, fmt.Errorf("invalid threshold '%s': want freq:dB", p)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(freqStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid frequency '%s': %w", freqStr, err)
		}
		th, err := strconv.ParseFloat(strings.TrimSpace(thStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold '%s': %w", thStr, err)
		}
		out = append(out, mask.ThresholdParams{FrequencyKHz: f, ThresholdDB: th})
	}
	return out, nil
}

// compose registers one threshold mask per entry and combines them on the
// grid of the first entry at refKHz.
func compose(reg *mask.Registry, p echogram.Provider, refKHz float64, ths []mask.ThresholdParams, mode mask.Mode) (*mask.Composite, error) {
	candidates := make([]mask.Handle, 0, len(ths))
	refIdx := -1
	for i, th := range ths {
		h, err := reg.RegisterThreshold(th)
		if err != nil {
			return nil, fmt.Errorf("register %g kHz: %w", th.FrequencyKHz, err)
		}
		candidates = append(candidates, h)
		if refIdx < 0 && th.FrequencyKHz == refKHz {
			refIdx = i
		}
	}
	if refIdx < 0 {
		return nil, fmt.Errorf("reference %g kHz has no threshold", refKHz)
	}
	return reg.Compose(p, candidates[refIdx], candidates, mode)
}

type bin struct {
	Value, Count int
}

// histogram counts composite cell values in ascending value order.
func histogram(m *echogram.Mask) []bin {
	counts := make(map[int]int)
	for _, v := range m.Cells {
		counts[v]++
	}
	out := make([]bin, 0, len(counts))
	for v, n := range counts {
		out = append(out, bin{v, n})
	}
	slices.SortFunc(out, func(a, b bin) int { return a.Value - b.Value })
	return out
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String("composite"))
		return
	}
	if *input == "" {
		log.Fatal("-input is required")
	}
	mode, err := mask.ParseMode(*modeName)
	if err != nil {
		log.Fatal(err)
	}
	ths, err := parseThresholds(*thresholds)
	if err != nil {
		log.Fatalf("failed to parse -thresholds: %v", err)
	}
	channels, err := echogram.LoadChannelsFile(*input)
	if err != nil {
		log.Fatalf("failed to load channels: %v", err)
	}

	comp, err := compose(mask.NewRegistry(), channels, *ref, ths, mode)
	if err != nil {
		log.Fatalf("composite failed: %v", err)
	}

	for _, b := range histogram(comp.Cells) {
		if mode == mask.Bitwise {
			log.Printf("value %d (bits %v): %d cells", b.Value, mask.DecodeBits(b.Value, comp.Bits), b.Count)
		} else {
			log.Printf("value %d: %d cells", b.Value, b.Count)
		}
	}
	if mode == mask.Bitwise {
		for i, th := range ths {
			log.Printf("plane %d (%g kHz > %g dB): %d cells", i, th.FrequencyKHz, th.ThresholdDB, comp.Plane(i).Count())
		}
	}
	for _, h := range comp.Skipped {
		log.Printf("skipped %s: no aligned pings", h)
	}

	if *pngPath != "" {
		title := fmt.Sprintf("%s composite on %g kHz", comp.Mode, *ref)
		if err := report.SaveHeatmapPNG(*pngPath, report.MaskHeatmap{Mask: comp.Cells, HideZero: true}, title); err != nil {
			log.Fatalf("failed to write PNG: %v", err)
		}
		log.Printf("wrote %s", *pngPath)
	}
}
