package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"piracy_tracker/internal/domain"
)

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Priority
	}{
		{"top target", "Top Target - Urgent Block", domain.PriorityCritical},
		{"urgent block alone", "urgent block requested", domain.PriorityCritical},
		{"needs investigation", "Needs Investigation (OSINT)", domain.PriorityHigh},
		{"priority block", "priority block pending review", domain.PriorityHigh},
		{"monitoring", "monitoring - block in progress", domain.PriorityMedium},
		{"under review", "Under Review", domain.PriorityMedium},
		{"low priority", "low priority, revisit next quarter", domain.PriorityLow},
		{"no data", "no data available", domain.PriorityLow},
		{"unrecognized non-empty", "escalate to legal", domain.PriorityMedium},
		{"empty", "", domain.PriorityLow},
		{"whitespace only", "   ", domain.PriorityLow},
		{"case insensitive", "TOP TARGET", domain.PriorityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPriority(tt.text))
		})
	}
}

// Precedence: when markers from two families appear, the earlier rule
// wins regardless of marker position in the text.
func TestClassifyPriority_Precedence(t *testing.T) {
	assert.Equal(t, domain.PriorityCritical,
		ClassifyPriority("monitoring ongoing but now a top target"))
	assert.Equal(t, domain.PriorityHigh,
		ClassifyPriority("low priority previously, needs investigation now"))
}

func TestClassifyPriority_Pure(t *testing.T) {
	// Same text, same tier, independent of anything classified before.
	first := ClassifyPriority("needs investigation")
	ClassifyPriority("top target")
	ClassifyPriority("")
	assert.Equal(t, first, ClassifyPriority("needs investigation"))
}

func TestShouldAutoRegister(t *testing.T) {
	allOff := domain.SyncOptions{}
	defaults := domain.DefaultSyncOptions()

	tests := []struct {
		name string
		text string
		opts domain.SyncOptions
		want bool
	}{
		{"empty text never registers", "", allOff, false},
		{"empty text even with defaults", "", defaults, false},
		{"low family never registers", "low priority", defaults, false},
		{"top target with flag", "Top Target", defaults, true},
		{"needs investigation with flag", "needs investigation", defaults, true},

		// The catch-all: non-empty, non-low text registers even with
		// both explicit flags off. "Top Target - Urgent Block" is
		// non-empty and not low-family, so the catch-all fires despite
		// autoAddTopTargets=false.
		{"catch-all covers top target with flags off", "Top Target - Urgent Block", allOff, true},
		{"catch-all covers plain advisory with flags off", "escalate to legal", allOff, true},
		{"catch-all does not cover low family", "no data", allOff, false},
		{"catch-all does not cover empty", "  ", allOff, false},

		{"sync all overrides everything", "", domain.SyncOptions{SyncAllFlagged: true}, true},
		{"sync all overrides low family", "low priority", domain.SyncOptions{SyncAllFlagged: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldAutoRegister(tt.text, tt.opts))
		})
	}
}

func TestNormalizeSiteType(t *testing.T) {
	tests := []struct {
		text string
		want domain.SiteType
	}{
		{"Aggregator", domain.SiteTypeAggregator},
		{"link aggregation portal", domain.SiteTypeAggregator},
		{"scanlation group", domain.SiteTypeScanlation},
		{"clone of main site", domain.SiteTypeClone},
		{"mirror", domain.SiteTypeClone},
		{"leak blog", domain.SiteTypeBlog},
		{"other", domain.SiteTypeOther},
		{"unclassified", domain.SiteTypeUnset},
		{"", domain.SiteTypeUnset},
		{"something novel", domain.SiteTypeUnset},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSiteType(tt.text), "input %q", tt.text)
	}
}

func TestNormalizeSiteStatus(t *testing.T) {
	tests := []struct {
		text string
		want domain.SiteStatus
	}{
		{"active", domain.StatusActive},
		{"Active (CDN)", domain.StatusActive},
		{"closed", domain.StatusClosed},
		{"shut down by registrar", domain.StatusClosed},
		{"seized", domain.StatusClosed},
		{"changed", domain.StatusRedirected},
		{"redirects to new domain", domain.StatusRedirected},
		{"", domain.StatusUnknown},
		{"???", domain.StatusUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSiteStatus(tt.text), "input %q", tt.text)
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://pirate-x.example/", "pirate-x.example"},
		{"http://pirate-x.example/landing?ref=1", "pirate-x.example"},
		{"Pirate-X.Example", "pirate-x.example"},
		{"pirate-x.example:8080", "pirate-x.example"},
		{"pirate-x.example.", "pirate-x.example"},
		{"  pirate-x.example  ", "pirate-x.example"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDomain(tt.raw), "input %q", tt.raw)
	}
}
