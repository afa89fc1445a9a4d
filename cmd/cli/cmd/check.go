package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"subscription-engine/core/plans"
	"subscription-engine/core/rules"
	apperrors "subscription-engine/internal/errors"
)

var checkCmd = &cobra.Command{
	Use:   "check <rules.json>",
	Short: "Validate a plan rules document",
	Long: `Checks that a JSON rules document is well formed and internally
consistent, without saving anything.

Examples:
  subscription-engine check ./rules.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	doc, err := rules.DecodeDocument(raw)
	if err != nil {
		return err
	}

	if err := plans.ValidateRules(doc); err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			fmt.Println("Rules document is invalid:")
			if problems, ok := appErr.Details["problems"].([]string); ok {
				for _, p := range problems {
					fmt.Printf("  - %s\n", p)
				}
			}
		}
		return err
	}

	fmt.Println("Rules document is valid.")
	return nil
}
