package config

import "time"

// SiteConfig holds site-specific fetch settings for a single host.
// This allows customizing crawl behavior per site, e.g. sending an
// authentication cookie to a members-only site.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when fetching this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Delay overrides the global politeness delay for this site.
	// Zero means the global CrawlDelay is used.
	Delay time.Duration `yaml:"delay,omitempty"`

	// Keywords override the global admission keywords for this site.
	Keywords []string `yaml:"keywords,omitempty"`

	// MaxDepth overrides the global crawl depth for this site.
	// Zero means the global MaxDepth is used.
	MaxDepth int `yaml:"maxDepth,omitempty"`
}

// File represents the structure of the .websift configuration file.
type File struct {
	// Sites maps hosts to their site-specific configurations.
	// Keys are bare hosts (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host,
// merging the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.Delay != 0 {
			result.Delay = siteConfig.Delay
		}
		if siteConfig.MaxDepth != 0 {
			result.MaxDepth = siteConfig.MaxDepth
		}
		if len(siteConfig.Keywords) > 0 {
			result.Keywords = siteConfig.Keywords
		}
		if len(siteConfig.Headers) > 0 {
			merged := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range siteConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
	}

	return result
}
