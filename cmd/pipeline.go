package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-places/internal/config"
	"github.com/kozaktomas/photo-places/internal/geocode"
	"github.com/kozaktomas/photo-places/internal/photo"
	"github.com/kozaktomas/photo-places/internal/pipeline"
	"github.com/kozaktomas/photo-places/internal/timeline"
)

// addPipelineFlags registers the flags shared by every command that runs the pipeline.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("history", "", "Location history: Google Takeout Records.json or a whence .db file")
	cmd.Flags().String("gazetteer", "", "Offline gazetteer YAML used instead of Nominatim (overrides GAZETTEER_PATH)")
	cmd.Flags().Bool("offline", false, "Never contact Nominatim; places without a gazetteer match stay unnamed")
	cmd.Flags().Int("workers", 0, "Concurrent geocode lookups (0 = GEOCODE_WORKERS or one per CPU)")
}

// runPipeline scans dir, loads the history and groups the photos.
func runPipeline(ctx context.Context, cmd *cobra.Command, cfg *config.Config, dir string) (*pipeline.Result, error) {
	historyPath := mustGetString(cmd, "history")
	gazetteerPath := mustGetString(cmd, "gazetteer")
	offline := mustGetBool(cmd, "offline")
	workers := mustGetInt(cmd, "workers")

	if gazetteerPath == "" {
		gazetteerPath = cfg.Gazetteer.Path
	}
	if workers <= 0 {
		workers = cfg.Geocode.Workers
	}

	reverser, err := newReverser(cfg, gazetteerPath, offline)
	if err != nil {
		return nil, err
	}

	var tl *timeline.Timeline
	if historyPath != "" {
		tl, err = timeline.LoadFile(ctx, historyPath, cfg.History.MaxAccuracyM)
		switch {
		case errors.Is(err, timeline.ErrEmptyHistory):
			fmt.Printf("Warning: %s contains no usable locations, photos without GPS stay unplaced\n", historyPath)
		case err != nil:
			return nil, fmt.Errorf("failed to load location history: %w", err)
		default:
			fmt.Printf("Loaded %d location samples from %s\n", tl.Len(), historyPath)
		}
	}

	records, err := scanPhotos(ctx, dir)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Found %d photos in %s\n", len(records), dir)

	result, err := pipeline.Run(ctx, records, tl, reverser, pipeline.Options{
		TickInterval: cfg.Geocode.TickInterval,
		Workers:      workers,
	})
	if err != nil {
		return nil, fmt.Errorf("grouping failed: %w", err)
	}
	return result, nil
}

// newReverser picks the place name source: a gazetteer when one is given,
// otherwise Nominatim unless offline. A nil Reverser means no naming.
func newReverser(cfg *config.Config, gazetteerPath string, offline bool) (geocode.Reverser, error) {
	if gazetteerPath != "" {
		g, err := geocode.LoadGazetteer(gazetteerPath)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Using offline gazetteer %s (%d places)\n", gazetteerPath, g.Len())
		return g, nil
	}
	if offline {
		fmt.Println("Offline mode: places are labelled by coordinates")
		return nil, nil
	}

	n, err := geocode.NewNominatim(geocode.NominatimConfig{
		URL:            cfg.Nominatim.URL,
		UserAgent:      cfg.Nominatim.UserAgent,
		Zoom:           cfg.Nominatim.Zoom,
		RequestsPerSec: cfg.Geocode.RequestsPerSecond,
		Timeout:        cfg.Geocode.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Nominatim client: %w", err)
	}
	fmt.Printf("Using Nominatim at %s\n", cfg.Nominatim.URL)
	return n, nil
}

func scanPhotos(ctx context.Context, dir string) ([]*photo.Record, error) {
	var bar *progressbar.ProgressBar
	records, err := photo.Scan(ctx, dir, func(p photo.ScanProgress) {
		if bar == nil {
			bar = progressbar.NewOptions(p.Total,
				progressbar.OptionSetDescription("Reading EXIF"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("photos"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionFullWidth(),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "=",
					SaucerHead:    ">",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)
		}
		bar.Add(1)
	})
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan photos: %w", err)
	}
	return records, nil
}
