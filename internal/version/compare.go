package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckCompatibility reports whether a record written by producedBy can be reused
// by the current build. Major and minor versions must match; patch versions may
// differ. A "main" development build on either side skips the check.
func CheckCompatibility(current, producedBy string) error {
	current = strings.TrimPrefix(current, "v")
	producedBy = strings.TrimPrefix(producedBy, "v")

	if current == "main" || producedBy == "main" {
		return nil
	}

	currentSemver, err := semver.NewVersion(current)
	if err != nil {
		return fmt.Errorf("invalid current version '%s': %w", current, err)
	}

	producedSemver, err := semver.NewVersion(producedBy)
	if err != nil {
		return fmt.Errorf("invalid record version '%s': %w", producedBy, err)
	}

	if currentSemver.Major() != producedSemver.Major() || currentSemver.Minor() != producedSemver.Minor() {
		return fmt.Errorf("version mismatch: library is %d.%d.x but record was produced by %d.%d.x",
			currentSemver.Major(), currentSemver.Minor(),
			producedSemver.Major(), producedSemver.Minor())
	}

	return nil
}
