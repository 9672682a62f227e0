// Package classify maps the monitoring source's free-text vocabulary
// onto the local enumerations. Everything here is a pure function over
// its arguments; the rules live in literal ordered tables so the
// precedence is visible and testable on its own.
package classify

import (
	"strings"

	"piracy_tracker/internal/domain"
)

// priorityRule maps a marker family to a tier. Rules are evaluated in
// order, first match wins, matching is case-insensitive substring.
type priorityRule struct {
	markers []string
	tier    domain.Priority
}

var priorityRules = []priorityRule{
	{
		markers: []string{"top target", "urgent block", "immediate block"},
		tier:    domain.PriorityCritical,
	},
	{
		markers: []string{"needs investigation", "osint required", "priority block"},
		tier:    domain.PriorityHigh,
	},
	{
		markers: []string{"monitoring", "block in progress", "under review"},
		tier:    domain.PriorityMedium,
	},
	{
		markers: []string{"low priority", "no data", "insufficient data"},
		tier:    domain.PriorityLow,
	},
}

// ClassifyPriority maps a recommendation text to a priority tier.
// Any non-empty text that matches no marker family is treated as a
// meaningful advisory and lands at medium; empty text is low.
func ClassifyPriority(recommendation string) domain.Priority {
	text := strings.ToLower(strings.TrimSpace(recommendation))
	if text == "" {
		return domain.PriorityLow
	}
	for _, rule := range priorityRules {
		for _, marker := range rule.markers {
			if strings.Contains(text, marker) {
				return rule.tier
			}
		}
	}
	return domain.PriorityMedium
}

// matchesLowFamily reports whether the text matches the low-priority
// marker family specifically, as opposed to classifying low because it
// is empty.
func matchesLowFamily(recommendation string) bool {
	text := strings.ToLower(strings.TrimSpace(recommendation))
	last := priorityRules[len(priorityRules)-1]
	for _, marker := range last.markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// ShouldAutoRegister decides whether a previously unseen domain gets a
// Site created for it. The final non-empty/non-low clause fires
// regardless of the two explicit flags: any substantive advisory
// triggers registration, over-registration being the safer failure
// mode than silently dropping a site.
func ShouldAutoRegister(recommendation string, opts domain.SyncOptions) bool {
	text := strings.TrimSpace(recommendation)
	tier := ClassifyPriority(text)

	if opts.SyncAllFlagged {
		return true
	}
	if tier == domain.PriorityCritical && opts.AutoAddTopTargets {
		return true
	}
	if tier == domain.PriorityHigh && opts.AutoAddNeeded {
		return true
	}
	return text != "" && !matchesLowFamily(text)
}

type siteTypeRule struct {
	markers []string
	t       domain.SiteType
}

var siteTypeRules = []siteTypeRule{
	{markers: []string{"aggregat"}, t: domain.SiteTypeAggregator},
	{markers: []string{"scanlation", "scan group", "scans"}, t: domain.SiteTypeScanlation},
	{markers: []string{"clone", "mirror", "copy site"}, t: domain.SiteTypeClone},
	{markers: []string{"blog", "leak", "forum"}, t: domain.SiteTypeBlog},
	{markers: []string{"other", "misc"}, t: domain.SiteTypeOther},
}

// NormalizeSiteType maps an external site-type hint to the local enum.
// Unrecognized or explicitly unclassified input returns SiteTypeUnset,
// which callers must treat as "leave the local field alone".
func NormalizeSiteType(external string) domain.SiteType {
	text := strings.ToLower(strings.TrimSpace(external))
	if text == "" || strings.Contains(text, "unclassified") {
		return domain.SiteTypeUnset
	}
	for _, rule := range siteTypeRules {
		for _, marker := range rule.markers {
			if strings.Contains(text, marker) {
				return rule.t
			}
		}
	}
	return domain.SiteTypeUnset
}

type siteStatusRule struct {
	markers []string
	s       domain.SiteStatus
}

var siteStatusRules = []siteStatusRule{
	{markers: []string{"active", "operating", "online"}, s: domain.StatusActive},
	{markers: []string{"closed", "shut down", "offline", "seized"}, s: domain.StatusClosed},
	{markers: []string{"changed", "redirect", "moved"}, s: domain.StatusRedirected},
}

// NormalizeSiteStatus maps an external status label to the local enum.
// Anything unrecognized is unknown; the engine never writes unknown
// over a differing local status.
func NormalizeSiteStatus(external string) domain.SiteStatus {
	text := strings.ToLower(strings.TrimSpace(external))
	for _, rule := range siteStatusRules {
		for _, marker := range rule.markers {
			if strings.Contains(text, marker) {
				return rule.s
			}
		}
	}
	return domain.StatusUnknown
}

// NormalizeDomain reduces a URL or hostname to a bare lowercase domain:
// scheme, path, port and trailing slashes are stripped. Used when a
// flagged site's successor URL is compared against tracked domains.
func NormalizeDomain(raw string) string {
	d := strings.TrimSpace(strings.ToLower(raw))
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.Index(d, ":"); i >= 0 {
		d = d[:i]
	}
	return strings.TrimSuffix(d, ".")
}
