package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFetch()
	c.normalizeCuration()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFetch() {
	c.Fetch.Binary = strings.TrimSpace(c.Fetch.Binary)
	if c.Fetch.Binary == "" {
		c.Fetch.Binary = defaultFetchBinary
	}
	if c.Fetch.CommentTimeout <= 0 {
		c.Fetch.CommentTimeout = defaultCommentTimeout
	}
	if c.Fetch.DescriptionTimeout <= 0 {
		c.Fetch.DescriptionTimeout = defaultDescriptionTimeout
	}
	if c.Fetch.MinRequestInterval < 0 {
		c.Fetch.MinRequestInterval = defaultMinRequestInterval
	}
	if c.Fetch.MaxComments <= 0 {
		c.Fetch.MaxComments = defaultMaxComments
	}
}

func (c *Config) normalizeCuration() {
	keywords := make([]string, 0, len(c.Curation.Keywords))
	seen := make(map[string]struct{}, len(c.Curation.Keywords))
	for _, keyword := range c.Curation.Keywords {
		trimmed := strings.TrimSpace(keyword)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		keywords = append(keywords, trimmed)
	}
	if len(keywords) == 0 {
		keywords = append(keywords, defaultKeywords...)
	}
	c.Curation.Keywords = keywords
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
