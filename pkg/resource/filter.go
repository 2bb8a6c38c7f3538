package resource

import (
	"net/url"
	"strings"
)

// Filter decides whether a sub-resource may be fetched. The pipeline
// only ever consumes the boolean.
type Filter interface {
	Allow(rawURL string) bool
}

// AllowAll is the filter used when no rule list is loaded.
type AllowAll struct{}

func (AllowAll) Allow(string) bool { return true }

// RuleList is a compiled block list in the common filter-list syntax
// subset: `||domain` anchors match a host and its subdomains, any
// other pattern matches as a substring of the URL, and `@@` prefixed
// rules are exceptions that override blocks.
type RuleList struct {
	block  []rule
	except []rule
}

type rule struct {
	domain  string // non-empty for ||domain rules
	path    string // optional path prefix after the anchored domain
	pattern string // substring otherwise
}

// ParseRuleList compiles filter list text. Comment lines start with
// '!' or '['; unsupported syntax is skipped.
func ParseRuleList(src string) *RuleList {
	rl := &RuleList{}
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "!") || strings.HasPrefix(line, "[") {
			continue
		}
		exception := false
		if strings.HasPrefix(line, "@@") {
			exception = true
			line = line[2:]
		}
		// Element-hiding rules operate on markup, not fetches.
		if strings.Contains(line, "##") {
			continue
		}
		line = strings.TrimSuffix(line, "^")

		var r rule
		if strings.HasPrefix(line, "||") {
			anchor := strings.ToLower(strings.TrimPrefix(line, "||"))
			if slash := strings.IndexByte(anchor, '/'); slash >= 0 {
				r.domain, r.path = anchor[:slash], anchor[slash:]
			} else {
				r.domain = anchor
			}
		} else {
			r.pattern = line
		}
		if r.domain == "" && r.pattern == "" {
			continue
		}
		if exception {
			rl.except = append(rl.except, r)
		} else {
			rl.block = append(rl.block, r)
		}
	}
	return rl
}

// Len returns the number of compiled rules.
func (rl *RuleList) Len() int { return len(rl.block) + len(rl.except) }

// Allow applies exceptions first, then block rules.
func (rl *RuleList) Allow(rawURL string) bool {
	for _, r := range rl.except {
		if r.matches(rawURL) {
			return true
		}
	}
	for _, r := range rl.block {
		if r.matches(rawURL) {
			return false
		}
	}
	return true
}

func (r *rule) matches(rawURL string) bool {
	if r.domain != "" {
		u, err := url.Parse(rawURL)
		if err != nil {
			return false
		}
		host := strings.ToLower(u.Hostname())
		if host != r.domain && !strings.HasSuffix(host, "."+r.domain) {
			return false
		}
		return r.path == "" || strings.HasPrefix(u.Path, r.path)
	}
	return strings.Contains(rawURL, r.pattern)
}
