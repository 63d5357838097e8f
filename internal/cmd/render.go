package cmd

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pagemason/pagemason/internal/config/autoconfig"
	"github.com/pagemason/pagemason/pkg/document"
	"github.com/pagemason/pagemason/pkg/store"
)

func renderCmd() *cobra.Command {
	var (
		ext         string
		concurrency int
	)

	cmd := cobra.Command{
		Use:   "render <path>...",
		Short: "Render stored documents to HTML on stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !document.ValidFormat(ext) {
				return fmt.Errorf("unsupported format %q", ext)
			}
			format := document.Format(ext)

			return autoconfig.Invoke(func(s store.Store) error {
				// Loads run concurrently; output stays in argument order.
				var (
					mu       sync.Mutex
					rendered = make(map[string]string, len(args))
				)

				g := new(errgroup.Group)
				g.SetLimit(concurrency)
				for _, docPath := range args {
					docPath := docPath
					g.Go(func() error {
						tree, err := s.Load(docPath, format)
						if err != nil {
							return err
						}
						out, err := document.ToMarkup(tree)
						if err != nil {
							return err
						}
						mu.Lock()
						rendered[docPath] = out
						mu.Unlock()
						return nil
					})
				}
				if err := g.Wait(); err != nil {
					return err
				}

				for _, docPath := range args {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered[docPath])
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&ext, "ext", "html", "Stored format to load: html or json.")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Maximum number of documents loaded in parallel.")

	return &cmd
}
