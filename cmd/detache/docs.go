package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keshon/detache/internal/config"
	"github.com/keshon/detache/internal/console"
	"github.com/keshon/detache/internal/docs"
	"github.com/keshon/detache/internal/memscope"
)

func newDocsCommand() *cobra.Command {
	var (
		output       string
		templatePath string
	)

	c := &cobra.Command{
		Use:   "docs",
		Short: "Print a Markdown reference of every command",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			tmpl := ""
			if templatePath != "" {
				data, err := os.ReadFile(templatePath)
				if err != nil {
					return fmt.Errorf("read template: %w", err)
				}
				tmpl = string(data)
			}

			_, set, err := wire(c.Context(), cfg, memscope.New(console.SelfID), nil)
			if err != nil {
				return err
			}
			defer set.Shutdown()

			w := c.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return docs.Reference(w, appName, cfg.Prefix, set.Plugins(), tmpl)
		},
	}
	c.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	c.Flags().StringVar(&templatePath, "template", "", "text/template file with {{.Title}} and {{.CommandSections}}")
	return c
}
