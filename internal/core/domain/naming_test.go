package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewResourceName(t *testing.T) {
	now := time.Date(2026, 10, 14, 7, 5, 9, 0, time.FixedZone("CEST", 2*60*60))

	name := NewResourceName("churn", now, "abc123")
	assert.Equal(t, "churn-2026-10-14-05-05-09-abc123", name)
	assert.NoError(t, ValidateResourceName(name))
	assert.True(t, IsGeneratedName("churn", name))

	assert.Equal(t, "churn-2026-10-14-05-05-09", NewResourceName("churn", now, ""))
}

func TestNewResourceName_LongLogicalName(t *testing.T) {
	logical := strings.Repeat("a", 35) + "-b" + strings.Repeat("c", 20)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	name := NewResourceName(logical, now, "abc123")
	assert.LessOrEqual(t, len(name), MaxResourceNameLength)
	assert.NoError(t, ValidateResourceName(name))
	assert.True(t, IsGeneratedName(logical, name))
	assert.True(t, strings.HasPrefix(name, strings.Repeat("a", 35)+"-2026"))
}

func TestIsGeneratedName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"churn-2026-10-14-12-00-00-abc123", true},
		{"churn-2026-10-14-12-00-00", true},
		{"churn", false},
		{"churn-v2-2026-10-14-12-00-00-abc123", false},
		{"churn-2026-10-14-12-00-00-ABC123", false},
		{"churn-2026-10-14-12-00-00-abc123-old", false},
		{"mychurn-2026-10-14-12-00-00-abc123", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGeneratedName("churn", tt.name))
		})
	}
}

func TestValidateResourceName(t *testing.T) {
	assert.NoError(t, ValidateResourceName("churn"))
	assert.NoError(t, ValidateResourceName("Churn-Model-2"))
	assert.NoError(t, ValidateResourceName(strings.Repeat("a", MaxResourceNameLength)))

	for _, bad := range []string{"", "churn_model", "-churn", "churn-", "a.b", strings.Repeat("a", MaxResourceNameLength+1)} {
		assert.ErrorIs(t, ValidateResourceName(bad), ErrInvalidResourceName, bad)
	}
}

func TestRandomSuffix(t *testing.T) {
	a, b := RandomSuffix(), RandomSuffix()
	assert.Len(t, a, 6)
	assert.Regexp(t, `^[0-9a-f]{6}$`, a)
	assert.NotEqual(t, a, b)
}
