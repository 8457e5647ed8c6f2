// Command gqlv serves the demo order domain over GraphQL and prints its
// schema.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.causeway.dev/gqlv/config"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type rootOptions struct {
	configFile string
}

func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(o.configFile)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "gqlv",
		Short: "GraphQL viewer of a live object metamodel",
		Long: `gqlv generates a GraphQL schema from the metamodel of a running domain
and serves it. Settings are read from gqlv.yaml and GQLV_* environment variables.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default ./gqlv.yaml)")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newSchemaCmd(opts))
	rootCmd.AddCommand(versionCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
