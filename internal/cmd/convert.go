package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagemason/pagemason/internal/config/autoconfig"
	"github.com/pagemason/pagemason/pkg/document"
	"github.com/pagemason/pagemason/pkg/store"
)

func convertCmd() *cobra.Command {
	var from, to string

	cmd := cobra.Command{
		Use:   "convert <path>...",
		Short: "Convert stored documents between the html and json formats",
		Long: `Convert loads each document in the source format and saves it in the
target format. The source record is left in place; both formats of the
same path coexist in the store.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !document.ValidFormat(from) || !document.ValidFormat(to) {
				return fmt.Errorf("unsupported format pair %q -> %q", from, to)
			}
			if from == to {
				return fmt.Errorf("source and target format are both %q", from)
			}

			return autoconfig.Invoke(func(s store.Store) error {
				for _, docPath := range args {
					tree, err := s.Load(docPath, document.Format(from))
					if err != nil {
						return err
					}
					if err := s.Save(docPath, document.Format(to), tree); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", docPath, from, to)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "html", "Source format.")
	cmd.Flags().StringVar(&to, "to", "json", "Target format.")

	return &cmd
}
