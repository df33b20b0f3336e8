package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/loom/pkg/models"
)

var (
	createTitle        string
	createFrontendOnly bool
	createNotes        string
	createMaxIter      int
)

var createCmd = &cobra.Command{
	Use:   "create <feature-id>",
	Short: "Create a feature workspace",
	Long: `Create an isolated workspace for a feature.

The workspace holds the feature's state and every artifact produced while it
moves through the workflow. Feature ids must be unique; creating an existing
feature fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		mode := models.ScopeFull
		if createFrontendOnly {
			mode = models.ScopeFrontendOnly
		}
		scope := models.NewScope(mode)
		scope.Notes = createNotes

		maxIter := createMaxIter
		if maxIter <= 0 {
			maxIter = cfg.Workflow.MaxIterations
		}

		ws, err := store.Create(args[0], createTitle, scope, maxIter)
		if err != nil {
			return err
		}

		printStatus("✓", fmt.Sprintf("Created workspace %s", ws.FeatureID), color.FgGreen)
		fmt.Printf("  Path:  %s\n", ws.RootPath)
		fmt.Printf("  Scope: %s\n", scope.Mode)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createTitle, "title", "", "Human-readable feature title")
	createCmd.Flags().BoolVar(&createFrontendOnly, "frontend-only", false, "Restrict the feature to frontend work")
	createCmd.Flags().StringVar(&createNotes, "notes", "", "Free-form scope notes")
	createCmd.Flags().IntVar(&createMaxIter, "max-iterations", 0, "Feedback-loop budget (default from config)")
}

// printStatus prints a colored status line.
func printStatus(symbol, message string, c color.Attribute) {
	color.New(c).Printf("%s ", symbol)
	fmt.Println(message)
}
