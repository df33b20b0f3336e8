package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/loom/internal/workspace"
)

var artifactType string

var artifactCmd = &cobra.Command{
	Use:   "artifact",
	Short: "Manage workspace artifacts",
	Long: `Save, read, and list the artifacts stored in a feature workspace.

Artifact names are unique within a workspace. Structured artifacts must be
well-formed JSON; invalid content is rejected without writing anything.`,
}

var artifactSaveCmd = &cobra.Command{
	Use:   "save <feature-id> <name> <file>",
	Short: "Save an artifact from a file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		typ := workspace.ArtifactType(artifactType)
		if !typ.Valid() {
			return fmt.Errorf("unknown artifact type %q (structured|document|text)", artifactType)
		}

		content, err := os.ReadFile(args[2])
		if err != nil {
			return err
		}

		info, err := store.SaveArtifact(args[0], args[1], content, typ)
		if err != nil {
			return err
		}
		printStatus("✓", fmt.Sprintf("Saved %s (%d bytes)", info.Name, info.Size), color.FgGreen)
		return nil
	},
}

var artifactGetCmd = &cobra.Command{
	Use:   "get <feature-id> <name>",
	Short: "Print an artifact's content",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		content, _, err := store.GetArtifact(args[0], args[1])
		if err != nil {
			return err
		}
		os.Stdout.Write(content)
		return nil
	},
}

var artifactListCmd = &cobra.Command{
	Use:   "list <feature-id>",
	Short: "List a workspace's artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		artifacts, err := store.ListArtifacts(args[0])
		if err != nil {
			return err
		}
		if len(artifacts) == 0 {
			fmt.Println("No artifacts")
			return nil
		}

		fmt.Printf("%-24s %-10s %8s  %s\n", "NAME", "TYPE", "SIZE", "MODIFIED")
		for _, a := range artifacts {
			fmt.Printf("%-24s %-10s %8d  %s\n",
				a.Name, a.Type, a.Size, a.ModifiedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	artifactSaveCmd.Flags().StringVar(&artifactType, "type", "document", "Artifact type (structured|document|text)")

	artifactCmd.AddCommand(artifactSaveCmd)
	artifactCmd.AddCommand(artifactGetCmd)
	artifactCmd.AddCommand(artifactListCmd)
}
