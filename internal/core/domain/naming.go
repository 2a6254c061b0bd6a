package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxResourceNameLength is the platform limit for model, config and endpoint names.
	MaxResourceNameLength = 63

	resourceTimestampLayout = "2006-01-02-15-04-05"
	resourceSuffixLength    = 6
)

var (
	resourceNamePattern = regexp.MustCompile(`^[a-zA-Z0-9](-*[a-zA-Z0-9])*$`)
	generatedTailRegexp = regexp.MustCompile(`^-\d{4}-\d{2}-\d{2}-\d{2}-\d{2}-\d{2}(-[0-9a-f]{6})?$`)
)

// ValidateResourceName checks a name against the platform naming rules
func ValidateResourceName(name string) error {
	if name == "" || len(name) > MaxResourceNameLength || !resourceNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidResourceName, name)
	}
	return nil
}

// RandomSuffix returns a short lowercase hex token for resource names
func RandomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:resourceSuffixLength]
}

// NewResourceName builds the per-deployment name shared by the new Model and
// EndpointConfig: logical name, UTC timestamp at second resolution, and a
// random suffix so two runs inside the same second still differ.
func NewResourceName(logicalName string, now time.Time, suffix string) string {
	name := resourcePrefix(logicalName) + "-" + now.UTC().Format(resourceTimestampLayout)
	if suffix != "" {
		name += "-" + suffix
	}
	return name
}

// IsGeneratedName reports whether name was produced by NewResourceName for
// logicalName. Names older deployments created without a suffix also match.
func IsGeneratedName(logicalName, name string) bool {
	prefix := resourcePrefix(logicalName)
	if !strings.HasPrefix(name, prefix) {
		return false
	}
	return generatedTailRegexp.MatchString(name[len(prefix):])
}

// resourcePrefix trims the logical name so a generated name stays within
// MaxResourceNameLength.
func resourcePrefix(logicalName string) string {
	limit := MaxResourceNameLength - len("-"+resourceTimestampLayout) - 1 - resourceSuffixLength
	if len(logicalName) <= limit {
		return logicalName
	}
	return strings.TrimRight(logicalName[:limit], "-")
}
