package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pagemason/pagemason/internal/config/autoconfig"
	"github.com/pagemason/pagemason/pkg/store"
)

func listCmd() *cobra.Command {
	var filter string

	cmd := cobra.Command{
		Use:     "list [prefix]",
		Aliases: []string{"ls"},
		Short:   "List stored document paths",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}

			var pattern glob.Glob
			if filter != "" {
				var err error
				if pattern, err = glob.Compile(filter); err != nil {
					return errors.Wrapf(err, "invalid filter %q", filter)
				}
			}

			return autoconfig.Invoke(func(s store.Store) error {
				paths, err := s.List(prefix)
				if err != nil {
					return err
				}

				pathColor := color.New(color.FgCyan)
				if !term.IsTerminal(int(os.Stdout.Fd())) {
					pathColor.DisableColor()
				}

				for _, p := range paths {
					if pattern != nil && !pattern.Match(p) {
						continue
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), pathColor.Sprint(p))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Glob pattern to filter paths, e.g. \"pages/*\".")

	return &cmd
}
