package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// DomainPolicy is the crawl policy for one domain.
type DomainPolicy struct {
	// Allowed reports whether the domain may be crawled at all.
	Allowed bool `yaml:"allowed"`

	// CrawlDelay is the robots.txt crawl-delay hint. Zero means the site
	// supplied none; the engine then applies its configured floor.
	CrawlDelay time.Duration `yaml:"crawl_delay,omitempty"`
}

// Oracle answers per-domain crawl permission and delay questions.
// It is immutable after construction and safe for concurrent reads.
type Oracle struct {
	// domains maps a lowercase domain to its policy.
	domains map[string]DomainPolicy

	// defaultDelay is the interval floor applied when a domain's policy
	// supplies a shorter (or no) crawl-delay.
	defaultDelay time.Duration
}

// NewOracle builds an oracle over the given policies.
// The map is copied; later mutation of the argument does not affect the oracle.
func NewOracle(domains map[string]DomainPolicy, defaultDelay time.Duration) *Oracle {
	copied := make(map[string]DomainPolicy, len(domains))
	for d, p := range domains {
		copied[d] = p
	}
	return &Oracle{domains: copied, defaultDelay: defaultDelay}
}

// Allowed reports whether the domain may be crawled.
// Domains without a recorded policy default to allowed.
func (o *Oracle) Allowed(domain string) bool {
	p, ok := o.domains[domain]
	if !ok {
		return true
	}
	return p.Allowed
}

// Delay returns the effective inter-request interval for the domain:
// the robots crawl-delay when it exceeds the configured floor, the floor
// otherwise.
func (o *Oracle) Delay(domain string) time.Duration {
	if p, ok := o.domains[domain]; ok && p.CrawlDelay > o.defaultDelay {
		return p.CrawlDelay
	}
	return o.defaultDelay
}

// Known reports whether the oracle holds an explicit policy for the domain.
func (o *Oracle) Known(domain string) bool {
	_, ok := o.domains[domain]
	return ok
}

// cacheFile is the on-disk YAML shape of the policy cache.
type cacheFile struct {
	// GeneratedAt records when the cache was written, for operator
	// visibility only; the crawl does not expire entries.
	GeneratedAt time.Time `yaml:"generated_at"`

	Domains map[string]cacheEntry `yaml:"domains"`
}

// cacheEntry stores the delay as a duration string ("1.5s") so the cache
// stays hand-editable.
type cacheEntry struct {
	Allowed    bool   `yaml:"allowed"`
	CrawlDelay string `yaml:"crawl_delay,omitempty"`
}

// LoadCache reads a policy cache written by SaveCache.
// A missing file yields an empty map, not an error: the crawl then treats
// every domain as unknown (allowed, floor delay).
func LoadCache(path string) (map[string]DomainPolicy, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Operator-chosen cache path
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]DomainPolicy{}, nil
		}
		return nil, fmt.Errorf("failed to read policy cache: %w", err)
	}

	var cf cacheFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse policy cache: %w", err)
	}

	out := make(map[string]DomainPolicy, len(cf.Domains))
	for domain, e := range cf.Domains {
		p := DomainPolicy{Allowed: e.Allowed}
		if e.CrawlDelay != "" {
			d, err := time.ParseDuration(e.CrawlDelay)
			if err != nil {
				return nil, fmt.Errorf("invalid crawl_delay for %s: %w", domain, err)
			}
			p.CrawlDelay = d
		}
		out[domain] = p
	}
	return out, nil
}

// SaveCache writes the policy map as YAML, creating parent directories.
// The write goes through a temporary file and rename so a crash never
// leaves a truncated cache behind.
func SaveCache(path string, domains map[string]DomainPolicy) error {
	cf := cacheFile{
		GeneratedAt: time.Now().UTC(),
		Domains:     make(map[string]cacheEntry, len(domains)),
	}
	for domain, p := range domains {
		e := cacheEntry{Allowed: p.Allowed}
		if p.CrawlDelay > 0 {
			e.CrawlDelay = p.CrawlDelay.String()
		}
		cf.Domains[domain] = e
	}

	data, err := yaml.Marshal(&cf)
	if err != nil {
		return fmt.Errorf("failed to serialize policy cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".robots-policy-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write policy cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close policy cache: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace policy cache: %w", err)
	}
	return nil
}

// Domains returns the sorted list of domains with a recorded policy.
func (o *Oracle) Domains() []string {
	out := make([]string, 0, len(o.domains))
	for d := range o.domains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
