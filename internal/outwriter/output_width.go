package outwriter

import (
	"os"

	"github.com/huangsam/flowstate/internal/contract"
	"golang.org/x/term"
)

// breakdownMinWidth is the narrowest terminal that fits the sub-score columns.
const breakdownMinWidth = 100

// getTableWidth returns the terminal width used for table layout.
func getTableWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}

	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		return 80
	}
	return detectedWidth
}

// showBreakdown reports whether period tables include the sub-score columns.
func showBreakdown(cfg *contract.Config) bool {
	return getTableWidth(cfg) >= breakdownMinWidth
}
