// Kmmctl is a command line client for the Park Media (Kuvata) digital
// signage management API.
//
// It logs in (or reuses a session cookie), calls one API method and prints
// the decoded response.
//
// Usage:
//
//	kmmctl [method] [arguments] [flags]
//	kmmctl --method-name device --method-arguments '{"id":987}'
//
// See 'kmmctl methods' for the available API methods.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parkmedia/kmmctl/internal/config"
	"github.com/parkmedia/kmmctl/internal/logging"
	"github.com/parkmedia/kmmctl/internal/parkmedia"
	"github.com/parkmedia/kmmctl/internal/ui"
	"github.com/parkmedia/kmmctl/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

func printError(err error) {
	hint := parkmedia.GetTroubleshootingHint(err)
	if ui.IsTerminal(os.Stderr) {
		fmt.Fprintln(os.Stderr, ui.NewFailureResult("kmmctl", err, strings.Split(hint, "\n")).Render())
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n\n%s\n", err, hint)
}

var rootCmd = &cobra.Command{
	Use:   "kmmctl [method] [arguments]",
	Short: "Park Media API client",
	Long: `A command line client for the Park Media digital signage management API.

Logs in with --username/--password unless a session cookie is supplied
(--cookie-contents, --cookie-file-name, the $PARK_MEDIA_API_SESSION_COOKIE
variable or a saved session), calls one API method and prints the result.

The method and its JSON arguments can be given as flags or as the first
two positional arguments:

  kmmctl devices --username admin
  kmmctl device 987 --pretty-print
  kmmctl asset_edit '{"asset_id":42,"metadata":{"Location":"Lobby"}}'

Every flag can also be set in an options file (./kmmctl_options.yaml or
options.yaml in the config directory) or as KMMCTL_<FLAG> in the
environment, e.g. KMMCTL_SERVER_ADDRESS.`,
	Version:       version.Version,
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetGlobalNormalizationFunc(config.NormalizeFlagName)
	config.RegisterFlags(rootCmd.Flags())

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(methodsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kmmctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List the available API methods",
	Run: func(cmd *cobra.Command, args []string) {
		printMethods(cmd.OutOrStdout())
	},
}
