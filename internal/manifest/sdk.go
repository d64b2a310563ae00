package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// classModifiersSince is the first Dart SDK that accepts "final class".
var classModifiersSince = semver.MustParse("3.0.0")

var (
	lowerBound = regexp.MustCompile(`(\^|>=|>)\s*v?(\d+(?:\.\d+){0,2}(?:[-+][0-9A-Za-z.+-]+)?)`)
	exactBound = regexp.MustCompile(`^=?\s*v?(\d+\.\d+\.\d+(?:[-+][0-9A-Za-z.+-]+)?)$`)
)

type pubspecEnvironment struct {
	Environment struct {
		SDK string `yaml:"sdk"`
	} `yaml:"environment"`
}

// ReadSDKConstraint returns the environment.sdk constraint of the manifest
// content, or "" when none is declared.
func ReadSDKConstraint(content []byte) (string, error) {
	var env pubspecEnvironment
	if err := yaml.Unmarshal(content, &env); err != nil {
		return "", fmt.Errorf("parsing manifest: %w", err)
	}

	return strings.TrimSpace(env.Environment.SDK), nil
}

// ReadSDKConstraintFile is ReadSDKConstraint for a file on disk.
func ReadSDKConstraintFile(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("reading manifest: %w", err)
	}

	return ReadSDKConstraint(data)
}

// MinimumSDK returns the smallest version admitted by a Dart SDK
// constraint such as "^3.2.0" or ">=2.17.0 <4.0.0". It returns nil for an
// empty or unbounded constraint ("any", "<3.0.0").
func MinimumSDK(constraint string) (*semver.Version, error) {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" || constraint == "any" {
		return nil, nil
	}

	if _, err := semver.NewConstraint(constraint); err != nil {
		return nil, fmt.Errorf("invalid SDK constraint %q: %w", constraint, err)
	}

	var lowest *semver.Version

	for _, m := range lowerBound.FindAllStringSubmatch(constraint, -1) {
		v, err := semver.NewVersion(m[2])
		if err != nil {
			return nil, fmt.Errorf("invalid SDK version %q: %w", m[2], err)
		}

		if lowest == nil || v.LessThan(lowest) {
			lowest = v
		}
	}

	if lowest != nil {
		return lowest, nil
	}

	if m := exactBound.FindStringSubmatch(constraint); m != nil {
		return semver.NewVersion(m[1])
	}

	return nil, nil
}

// SupportsClassModifiers reports whether every SDK admitted by constraint
// understands Dart 3 class modifiers. Unparseable constraints report false.
func SupportsClassModifiers(constraint string) bool {
	v, err := MinimumSDK(constraint)
	if err != nil || v == nil {
		return false
	}

	return !v.LessThan(classModifiersSince)
}
