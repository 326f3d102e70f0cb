package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
)

// CheckSettingsCompatibility checks that a settings file written for
// settingsVersion can be read by a binary at binaryVersion.
//
// An empty settings version or a "main" build skips the check. Major
// versions must match and the binary must be at least as new as the
// settings file, so a v1.4 file is refused by a v1.3 binary.
func CheckSettingsCompatibility(binaryVersion, settingsVersion string) error {
	binaryVersion = strings.TrimPrefix(binaryVersion, "v")
	settingsVersion = strings.TrimPrefix(settingsVersion, "v")

	if settingsVersion == "" || binaryVersion == "main" {
		return nil
	}

	binary, err := semver.NewVersion(binaryVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid binary version '%s'", binaryVersion)
	}

	settings, err := semver.NewVersion(settingsVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidSettingsFile, err, "invalid settings version '%s'", settingsVersion)
	}

	if binary.Major() != settings.Major() {
		return errors.Newf(errors.ErrCodeInvalidSettingsFile,
			"major version mismatch: binary is %d.x.x but settings require %d.x.x", binary.Major(), settings.Major())
	}

	if binary.LessThan(settings) {
		return errors.Newf(errors.ErrCodeInvalidSettingsFile,
			"settings require version %s but binary is %s", settings.String(), binary.String())
	}

	return nil
}
