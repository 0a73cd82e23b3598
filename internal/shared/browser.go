package shared

import (
	"fmt"

	"github.com/skratchdot/open-golang/open"
)

var openURL = open.Run

// OpenBrowser opens the default system browser to the specified URL.
//
// Failures are recoverable; the caller is expected to print the URL so the
// user can open it manually.
func OpenBrowser(url string) error {
	if err := openURL(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
