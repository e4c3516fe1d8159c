package config

// SiteConfig holds per-site overrides for a single host. Keys in the
// config file are bare hostnames ("example.com"), matched against the
// seed's host.
type SiteConfig struct {
	// UserAgent overrides the global User-Agent for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Headers are custom HTTP headers to include in requests to this
	// site, for example a session cookie for authenticated crawling.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// Zero means use the global depth.
	Depth int `yaml:"depth,omitempty"`

	// Delay overrides the global politeness delay for this site.
	// Zero means use the global delay.
	Delay Duration `yaml:"delay,omitempty"`
}

// File represents the structure of the .silentcrawl configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults is applied to every site unless overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the effective configuration for a host, merging
// the site-specific entry over the defaults field by field. The returned
// Headers map is always a fresh copy: headers carry session cookies and
// auth tokens, and writing one host's entries into the shared defaults
// map would send them to every host resolved afterwards.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.Delay != 0 {
			result.Delay = siteConfig.Delay
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string, len(siteConfig.Headers))
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}
