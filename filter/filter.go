// Package filter implements include/exclude location filters over archive pathnames.
//
// A filter pairs an inclusion kind with a glob or regular-expression pattern
// that is matched against either the filename or the whole pathname of an
// entry. A list of filters is compiled into a [Chain]; the last filter in the
// chain whose pattern matches decides whether a pathname is accepted, and a
// pathname matched by no filter is accepted.
package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/meigma/zipview/internal/pathutil"
)

// ErrInvalidPattern is returned when a filter's pattern cannot be compiled.
var ErrInvalidPattern = errors.New("filter: invalid pattern")

// Kind selects whether a matching filter includes or excludes a pathname.
type Kind uint8

const (
	Include Kind = iota
	Exclude
)

func (k Kind) String() string {
	switch k {
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	default:
		return "unknown"
	}
}

// ParseKind returns the Kind for key.
func ParseKind(key string) (Kind, error) {
	switch key {
	case "include":
		return Include, nil
	case "exclude":
		return Exclude, nil
	}
	return 0, fmt.Errorf("filter: unknown kind %q", key)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// PatternKind selects the pattern syntax and the part of the pathname it is matched against.
type PatternKind uint8

const (
	GlobFilename PatternKind = iota
	GlobPathname
	RegexFilename
	RegexPathname
)

var patternKinds = [...]struct {
	key   string
	short byte
	text  string
}{
	GlobFilename:  {"globFilename", 'g', "Glob, filename"},
	GlobPathname:  {"globPathname", 'G', "Glob, pathname"},
	RegexFilename: {"regexFilename", 'r', "Regular expression, filename"},
	RegexPathname: {"regexPathname", 'R', "Regular expression, pathname"},
}

func (p PatternKind) valid() bool {
	return int(p) < len(patternKinds)
}

// String returns a human-readable description.
func (p PatternKind) String() string {
	if !p.valid() {
		return "unknown"
	}
	return patternKinds[p].text
}

// Key returns the persistent key, e.g. "globFilename".
func (p PatternKind) Key() string {
	if !p.valid() {
		return ""
	}
	return patternKinds[p].key
}

// ShortKey returns the one-character key: g, G, r or R.
func (p PatternKind) ShortKey() byte {
	if !p.valid() {
		return 0
	}
	return patternKinds[p].short
}

// IsGlob reports whether the pattern is a glob.
func (p PatternKind) IsGlob() bool { return p == GlobFilename || p == GlobPathname }

// IsFilename reports whether the pattern is matched against the filename only.
func (p PatternKind) IsFilename() bool { return p == GlobFilename || p == RegexFilename }

// ParsePatternKind returns the PatternKind for a persistent key.
func ParsePatternKind(key string) (PatternKind, error) {
	for i, pk := range patternKinds {
		if pk.key == key {
			return PatternKind(i), nil //nolint:gosec // bounded by table size
		}
	}
	return 0, fmt.Errorf("filter: unknown pattern kind %q", key)
}

// PatternKindForShortKey returns the PatternKind for a one-character key.
func PatternKindForShortKey(c byte) (PatternKind, bool) {
	for i, pk := range patternKinds {
		if pk.short == c {
			return PatternKind(i), true //nolint:gosec // bounded by table size
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (p PatternKind) MarshalText() ([]byte, error) {
	if !p.valid() {
		return nil, fmt.Errorf("filter: invalid pattern kind %d", p)
	}
	return []byte(p.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PatternKind) UnmarshalText(text []byte) error {
	v, err := ParsePatternKind(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Filter is a single include or exclude rule.
type Filter struct {
	Kind    Kind        `yaml:"kind"`
	Pattern PatternKind `yaml:"patternKind"`
	Expr    string      `yaml:"pattern"`
}

// String formats the filter as "+g:expr" or "-R:expr".
func (f Filter) String() string {
	sign := '+'
	if f.Kind == Exclude {
		sign = '-'
	}
	return fmt.Sprintf("%c%c:%s", sign, f.Pattern.ShortKey(), f.Expr)
}

// Parse reads a pattern in the form "<short key>:<expr>", e.g. "g:*.txt" or
// "R:^docs/.*". Without a recognised prefix the whole string is a pathname glob.
func Parse(kind Kind, s string) Filter {
	if len(s) >= 2 && s[1] == ':' {
		if pk, ok := PatternKindForShortKey(s[0]); ok {
			return Filter{Kind: kind, Pattern: pk, Expr: s[2:]}
		}
	}
	return Filter{Kind: kind, Pattern: GlobPathname, Expr: s}
}

// Matches compiles f and reports whether it matches pathname.
func (f Filter) Matches(pathname string) (bool, error) {
	m, err := compile(f)
	if err != nil {
		return false, err
	}
	return m.matches(pathname), nil
}

type matcher struct {
	kind     Kind
	filename bool
	glob     string
	re       *regexp.Regexp
}

func compile(f Filter) (matcher, error) {
	if !f.Pattern.valid() {
		return matcher{}, fmt.Errorf("%w: unknown pattern kind %d", ErrInvalidPattern, f.Pattern)
	}
	m := matcher{kind: f.Kind, filename: f.Pattern.IsFilename()}
	if f.Pattern.IsGlob() {
		if !doublestar.ValidatePattern(f.Expr) {
			return matcher{}, fmt.Errorf("%w: %q", ErrInvalidPattern, f.Expr)
		}
		m.glob = f.Expr
		return m, nil
	}
	re, err := regexp.Compile(`^(?:` + f.Expr + `)$`)
	if err != nil {
		return matcher{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, f.Expr, err)
	}
	m.re = re
	return m, nil
}

func (m matcher) matches(pathname string) bool {
	subject := strings.TrimSuffix(pathname, "/")
	if m.filename {
		subject = pathutil.Base(subject)
	}
	if m.re != nil {
		return m.re.MatchString(subject)
	}
	ok, err := doublestar.Match(m.glob, subject)
	return err == nil && ok
}

// Chain is a compiled, ordered list of filters.
//
// The zero value and a nil *Chain accept every pathname.
type Chain struct {
	matchers []matcher
}

// Compile validates and compiles filters in order.
func Compile(filters []Filter) (*Chain, error) {
	c := &Chain{matchers: make([]matcher, 0, len(filters))}
	for _, f := range filters {
		m, err := compile(f)
		if err != nil {
			return nil, err
		}
		c.matchers = append(c.matchers, m)
	}
	return c, nil
}

// Accept reports whether pathname passes the chain.
//
// Filters are scanned in order and the last one that matches decides;
// a pathname matched by none is accepted.
func (c *Chain) Accept(pathname string) bool {
	if c == nil {
		return true
	}
	accept := true
	for _, m := range c.matchers {
		if m.matches(pathname) {
			accept = m.kind == Include
		}
	}
	return accept
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.matchers)
}
