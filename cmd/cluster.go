package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-places/internal/config"
	"github.com/kozaktomas/photo-places/internal/pipeline"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster <photo-dir>",
	Short: "Group photos into places and events",
	Long: `Group the photos under a directory into places and events.
Photos without GPS tags are placed at the location history sample
closest to their capture time. Places are named with Nominatim,
or with an offline gazetteer when one is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runCluster,
}

func init() {
	rootCmd.AddCommand(clusterCmd)

	addPipelineFlags(clusterCmd)
	clusterCmd.Flags().Bool("json", false, "Print the result as JSON")
	clusterCmd.Flags().Bool("files", true, "List the files of every group")
}

func runCluster(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	asJSON := mustGetBool(cmd, "json")
	listFiles := mustGetBool(cmd, "files")

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal...")
		cancel()
	}()

	result, err := runPipeline(ctx, cmd, cfg, args[0])
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printGroups("Places", result.Places, listFiles)
	printGroups("Events", result.Events, listFiles)
	printStats(result.Stats)
	return nil
}

func printGroups(title string, groups []pipeline.Group, listFiles bool) {
	fmt.Printf("\n%s (%d):\n", title, len(groups))
	for _, g := range groups {
		fmt.Printf("  %s: %d photos", g.Label, len(g.Files))
		if g.Start != nil && g.End != nil {
			fmt.Printf(" (%s - %s)", g.Start.Format(pipeline.EventLabelLayout), g.End.Format(pipeline.EventLabelLayout))
		}
		fmt.Println()
		if listFiles {
			for _, f := range g.Files {
				fmt.Printf("    %s\n", f)
			}
		}
	}
}

func printStats(s pipeline.Stats) {
	fmt.Printf("\nPhotos: %d\n", s.Photos)
	fmt.Printf("Located from history: %d\n", s.Resolved)
	fmt.Printf("Without location: %d\n", s.Unresolved)
	fmt.Printf("Places: %d, events: %d\n", s.SpatialClusters, s.TemporalClusters)
	fmt.Printf("Geocode lookups: %d (%d failed)\n", s.Lookups, s.LookupsFailed)
	fmt.Printf("Named photos: %d\n", s.Named)
}
