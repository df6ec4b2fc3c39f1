package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"relloyd/focustrack/models"
)

func testRules() models.MapCategoryDomains {
	return models.MapCategoryDomains{
		models.CategoryCommunication: {"gmail.com", "mail.google.com", "slack.com"},
		models.CategoryMeetings:      {"meet.google.com", "zoom.us"},
		models.CategoryBuilding:      {"github.com", "localhost"},
		models.CategoryAdmin:         {"calendar.google.com", "notion.so"},
		models.CategoryResearch:      {"google.com", "wikipedia.org"},
	}
}

func TestNewClassifier(t *testing.T) {
	c, err := NewClassifier(nil)
	assert.Error(t, err, "NewClassifier did not return error for empty rules")
	assert.Nil(t, c, "NewClassifier did not return nil for empty rules")

	c, err = NewClassifier(testRules())
	assert.NoError(t, err, "NewClassifier failed with valid rules")
	assert.NotNil(t, c, "NewClassifier returned nil with valid rules")
}

func TestClassify(t *testing.T) {
	c, err := NewClassifier(testRules())
	require.NoError(t, err)

	tests := []struct {
		name     string
		hostname string
		expected models.Category
	}{
		{
			name:     "Communication before research precedence",
			hostname: "mail.google.com", // must hit the communication list before research's google.com
			expected: models.CategoryCommunication,
		},
		{
			name:     "Meetings before research precedence",
			hostname: "meet.google.com",
			expected: models.CategoryMeetings,
		},
		{
			name:     "Substring match on subdomain",
			hostname: "gist.github.com",
			expected: models.CategoryBuilding,
		},
		{
			name:     "Rule containing the input matches",
			hostname: "zoom.us",
			expected: models.CategoryMeetings,
		},
		{
			name:     "Upper case input is lowered",
			hostname: "SLACK.COM",
			expected: models.CategoryCommunication,
		},
		{
			name:     "Plain research domain",
			hostname: "en.wikipedia.org",
			expected: models.CategoryResearch,
		},
		{
			name:     "No match falls back to research",
			hostname: "example.org",
			expected: models.CategoryResearch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.hostname), "Classify(%q)", tt.hostname)
		})
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected models.Domain
	}{
		{name: "Plain https URL", url: "https://github.com/some/repo", expected: "github.com"},
		{name: "Strips leading www", url: "https://www.youtube.com/watch?v=x", expected: "youtube.com"},
		{name: "Keeps deeper subdomains", url: "https://mail.google.com/mail/u/0", expected: "mail.google.com"},
		{name: "Strips only one www", url: "https://www.www.example.com", expected: "www.example.com"},
		{name: "Port is dropped", url: "http://localhost:3000/app", expected: "localhost"},
		{name: "Malformed URL", url: "http://%zz", expected: models.UnknownDomain},
		{name: "Empty URL", url: "", expected: models.UnknownDomain},
		{name: "Scheme-less string has no host", url: "just-some-text", expected: models.UnknownDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractDomain(tt.url), "ExtractDomain(%q)", tt.url)
		})
	}
}

func TestIsInternalURL(t *testing.T) {
	assert.True(t, IsInternalURL(""), "empty URL should be internal")
	assert.True(t, IsInternalURL("chrome://settings"), "chrome scheme should be internal")
	assert.True(t, IsInternalURL("about:blank"), "about scheme should be internal")
	assert.True(t, IsInternalURL("chrome-extension://abcdef/popup.html"), "extension scheme should be internal")
	assert.False(t, IsInternalURL("https://github.com"), "https URL should not be internal")
	assert.False(t, IsInternalURL("http://chrome.google.com"), "http URL with chrome in the host should not be internal")
}
