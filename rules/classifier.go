package rules

import (
	"fmt"
	"net/url"
	"strings"

	"relloyd/focustrack/models"
)

// matchOrder is the order categories are tried in. Earlier categories win
// when more than one rule list could match; research goes last because it is
// also the fallback and carries the broadest domains.
var matchOrder = []models.Category{
	models.CategoryCommunication,
	models.CategoryMeetings,
	models.CategoryBuilding,
	models.CategoryAdmin,
	models.CategoryResearch,
}

// Classifier maps hostnames to categories using curated rule lists.
// It is immutable after construction.
type Classifier struct {
	rules models.MapCategoryDomains
}

// NewClassifier builds a Classifier from the supplied rule lists, normally
// the output of config.LoadCategoryRules.
func NewClassifier(rules models.MapCategoryDomains) (*Classifier, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("category rules must be provided")
	}
	return &Classifier{rules: rules}, nil
}

// Classify returns the category for a hostname. Rules match on substring
// containment in either direction, so "mail.google.com" matches a
// "mail.google.com" entry from a deep subdomain and a "gmail.com" entry
// matches "gmail.com" exactly as well as "mail.gmail.com". No match returns
// the default category.
func (c *Classifier) Classify(hostname string) models.Category {
	host := strings.ToLower(hostname)
	for _, cat := range matchOrder {
		for _, d := range c.rules[cat] {
			rule := string(d)
			if strings.Contains(host, rule) || strings.Contains(rule, host) {
				return cat
			}
		}
	}
	return models.DefaultCategory
}

// ExtractDomain parses a URL and returns its normalised hostname with a
// single leading "www." stripped. Malformed or host-less URLs return the
// unknown sentinel; it never fails.
func ExtractDomain(rawURL string) models.Domain {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return models.UnknownDomain
	}
	return models.NewDomain(u.Hostname())
}

// internalSchemes are browser-internal URL schemes that are never tracked.
var internalSchemes = []string{"chrome://", "chrome-extension://", "about:", "edge://", "brave://", "devtools://"}

// IsInternalURL reports whether a URL points at a browser-internal page.
// Empty URLs count as internal: there is nothing to attribute time to.
func IsInternalURL(rawURL string) bool {
	if rawURL == "" {
		return true
	}
	lower := strings.ToLower(rawURL)
	for _, s := range internalSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}
