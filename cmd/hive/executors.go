package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/hive/internal/config"
	"github.com/ShayCichocki/hive/pkg/models"
)

var executorsCmd = &cobra.Command{
	Use:   "executors",
	Short: "List the executors declared in the manifest",
	Long: `Show the executor fleet: each executor's name, type, and the
capability tags it covers, in declaration order. Declaration order
matters: it breaks assignment ties between equally specific executors.`,
	RunE: listExecutors,
}

func listExecutors(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	manifest, err := loadManifest(cfg)
	if err != nil {
		return err
	}

	nameColor := color.New(color.FgCyan, color.Bold)
	typeColor := color.New(color.FgYellow)
	capsColor := color.New(color.FgGreen)

	for i, spec := range manifest.Executors {
		fmt.Printf("%2d. %s  %s\n", i+1,
			nameColor.Sprint(spec.Name),
			typeColor.Sprintf("(%s)", spec.Type))
		caps := models.NewCapabilitySet(spec.Capabilities...)
		fmt.Printf("    capabilities: %s\n", capsColor.Sprint(strings.Join(caps.Tags(), ", ")))
		if spec.Endpoint != "" {
			fmt.Printf("    endpoint: %s\n", spec.Endpoint)
		}
		if spec.Timeout.Std() > 0 {
			fmt.Printf("    timeout: %s\n", spec.Timeout.Std())
		}
		if spec.Retries > 0 {
			fmt.Printf("    retries: %d\n", spec.Retries)
		}
	}

	return nil
}
