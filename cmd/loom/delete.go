package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteConfirm bool

var deleteCmd = &cobra.Command{
	Use:   "delete <feature-id>",
	Short: "Delete a feature workspace",
	Long: `Delete a feature workspace and everything inside it.

The deletion is irreversible and must be confirmed with --confirm.`,
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

		if err := store.Delete(args[0], deleteConfirm); err != nil {
			return err
		}
		printStatus("✓", fmt.Sprintf("Deleted workspace %s", args[0]), color.FgGreen)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteConfirm, "confirm", false, "Confirm the irreversible deletion")
}
