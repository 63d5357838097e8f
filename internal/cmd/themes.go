package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pagemason/pagemason/internal/config/autoconfig"
	"github.com/pagemason/pagemason/pkg/theme"
)

func themesCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "themes [name]",
		Short: "List available themes, or the blocks of one theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return autoconfig.Invoke(func(dir *theme.Dir) error {
				bold := color.New(color.Bold)
				dim := color.New(color.Faint)
				if !term.IsTerminal(int(os.Stdout.Fd())) {
					bold.DisableColor()
					dim.DisableColor()
				}
				out := cmd.OutOrStdout()

				if len(args) == 0 {
					names, err := dir.Themes()
					if err != nil {
						return err
					}
					for _, name := range names {
						_, _ = fmt.Fprintln(out, name)
					}
					return nil
				}

				blocks, err := dir.LoadTheme(args[0])
				if err != nil {
					return err
				}
				for _, block := range blocks {
					_, _ = fmt.Fprintf(out, "%s %s\n", bold.Sprint(block.Folder), dim.Sprintf("(%d bytes)", len(block.Source)))
				}
				return nil
			})
		},
	}

	return &cmd
}
