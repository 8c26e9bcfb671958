package cmd

import (
	"runtime"
	"strings"

	"github.com/huangsam/flowstate/internal/store"
	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flowstate.",
	Long: `Display version information including build details and the
tables managed by the flow store. Include this output when reporting bugs.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("flowstate CLI\n")
		cmd.Printf("  Version: %s\n", version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Runtime: %s\n", runtime.Version())
		cmd.Printf("  Tables:  %s\n", strings.Join(store.Tables, ", "))
	},
}
