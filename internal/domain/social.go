package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// SocialPlatform identifies where a social link points.
type SocialPlatform string

const (
	PlatformTwitter  SocialPlatform = "twitter"
	PlatformTelegram SocialPlatform = "telegram"
	PlatformDiscord  SocialPlatform = "discord"
	PlatformWebsite  SocialPlatform = "website"
	PlatformMedium   SocialPlatform = "medium"
)

// SocialPlatforms lists the accepted platforms in display order.
var SocialPlatforms = []SocialPlatform{
	PlatformTwitter,
	PlatformTelegram,
	PlatformDiscord,
	PlatformWebsite,
	PlatformMedium,
}

// ParseSocialPlatform returns the platform for s (case-insensitive).
func ParseSocialPlatform(s string) (SocialPlatform, error) {
	p := SocialPlatform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SocialPlatforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown social platform %q", s)
}

// SocialLink is a (platform, url) pair attached to a token.
type SocialLink struct {
	Platform SocialPlatform `json:"platform"`
	URL      string         `json:"url"`
}

// Validate checks the platform and that the URL is an absolute http(s) URL.
func (l SocialLink) Validate() error {
	if _, err := ParseSocialPlatform(string(l.Platform)); err != nil {
		return err
	}
	if !strings.HasPrefix(l.URL, "http://") && !strings.HasPrefix(l.URL, "https://") {
		return fmt.Errorf("%s link must start with http:// or https://", l.Platform)
	}
	u, err := url.Parse(l.URL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%s link %q is not a valid URL", l.Platform, l.URL)
	}
	return nil
}

// SocialLinks is the ordered list of links on a token.
type SocialLinks []SocialLink

// Add appends link after validating it. On error the list is left unchanged.
func (s *SocialLinks) Add(link SocialLink) error {
	link.URL = strings.TrimSpace(link.URL)
	if err := link.Validate(); err != nil {
		return err
	}
	*s = append(*s, link)
	return nil
}

// Remove drops the link at index i. Out-of-range indexes are ignored.
func (s *SocialLinks) Remove(i int) {
	if i < 0 || i >= len(*s) {
		return
	}
	*s = append((*s)[:i], (*s)[i+1:]...)
}
