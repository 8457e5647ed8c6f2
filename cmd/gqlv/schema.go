package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.causeway.dev/gqlv/example/orders"
	"go.causeway.dev/gqlv/introspection"
	"go.causeway.dev/gqlv/schemabuilder"
)

func newSchemaCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the generated schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "sdl" && format != "json" {
				return fmt.Errorf("unknown format %q, expected sdl or json", format)
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			f, err := orders.NewFixture()
			if err != nil {
				return err
			}
			schema, err := f.BuildSchema(cfg, schemabuilder.WithLogger(logger))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "sdl" {
				_, err = fmt.Fprint(out, introspection.PrintSDL(schema))
				return err
			}
			raw, err := introspection.Export(schema)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(raw))
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "sdl", "output format: sdl or json")
	return cmd
}
