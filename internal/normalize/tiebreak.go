package normalize

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kgdevtools/lca-auth-sub003/internal/domain"
)

//go:embed tiebreak_rules.yaml
var defaultTieBreakRules []byte

// TieBreakRule maps column keys to a tie-break label. Keys are compared
// after folding to lowercase letters and digits; patterns are regular
// expressions over the same folded form.
type TieBreakRule struct {
	Label    string   `yaml:"label"`
	Keys     []string `yaml:"keys"`
	Patterns []string `yaml:"patterns"`
}

type tieBreakRuleFile struct {
	Rules []TieBreakRule `yaml:"rules"`
}

type patternRule struct {
	label string
	re    *regexp.Regexp
}

// TieBreakClassifier labels tie-break columns using a rule table.
// It is immutable after construction and safe for concurrent use.
type TieBreakClassifier struct {
	exact    map[string][]string
	patterns []patternRule
	labels   []string
}

// NewTieBreakClassifier compiles a rule table.
func NewTieBreakClassifier(rules []TieBreakRule) (*TieBreakClassifier, error) {
	c := &TieBreakClassifier{exact: make(map[string][]string)}
	for i, rule := range rules {
		label := strings.TrimSpace(rule.Label)
		if label == "" {
			return nil, fmt.Errorf("tie-break rule %d: missing label", i)
		}
		if len(rule.Keys) == 0 && len(rule.Patterns) == 0 {
			return nil, fmt.Errorf("tie-break rule %q: no keys or patterns", label)
		}
		for _, k := range rule.Keys {
			ck := compactKey(k)
			if ck == "" {
				return nil, fmt.Errorf("tie-break rule %q: key %q folds to nothing", label, k)
			}
			if !slices.Contains(c.exact[ck], label) {
				c.exact[ck] = append(c.exact[ck], label)
			}
		}
		for _, p := range rule.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("tie-break rule %q: pattern %q: %w", label, p, err)
			}
			c.patterns = append(c.patterns, patternRule{label: label, re: re})
		}
		if !slices.Contains(c.labels, label) {
			c.labels = append(c.labels, label)
		}
	}
	return c, nil
}

// LoadTieBreakRules reads a YAML rule document.
func LoadTieBreakRules(r io.Reader) (*TieBreakClassifier, error) {
	var doc tieBreakRuleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode tie-break rules: %w", err)
	}
	return NewTieBreakClassifier(doc.Rules)
}

// LoadTieBreakRulesFile reads a YAML rule document from path.
func LoadTieBreakRulesFile(path string) (*TieBreakClassifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tie-break rules: %w", err)
	}
	defer f.Close()
	return LoadTieBreakRules(f)
}

//nolint:gochecknoglobals // built once from the embedded rule table
var defaultClassifier = sync.OnceValue(func() *TieBreakClassifier {
	c, err := LoadTieBreakRules(strings.NewReader(string(defaultTieBreakRules)))
	if err != nil {
		panic(fmt.Sprintf("embedded tie-break rules: %v", err))
	}
	return c
})

// DefaultTieBreakClassifier returns the classifier built from the
// embedded rule table.
func DefaultTieBreakClassifier() *TieBreakClassifier {
	return defaultClassifier()
}

// DetectTieBreaks labels the recognized columns of a tie-break map with
// the default rules. Unrecognized or ambiguous columns are left out.
func DetectTieBreaks(m map[string]any) map[string]string {
	return DefaultTieBreakClassifier().Detect(m)
}

// Labels lists the labels the classifier can assign, in rule order.
func (c *TieBreakClassifier) Labels() []string {
	return slices.Clone(c.labels)
}

// Label classifies one column. A value shaped like {"name": "Buchholz", ...}
// is classified by its name rather than by the column key.
func (c *TieBreakClassifier) Label(key string, value any) (string, bool) {
	if obj, ok := value.(map[string]any); ok {
		for _, field := range []string{"name", "label", "type"} {
			if s, ok := obj[field].(string); ok && s != "" {
				if label, ok := c.match(s); ok {
					return label, true
				}
			}
		}
	}
	return c.match(key)
}

func (c *TieBreakClassifier) match(key string) (string, bool) {
	ck := compactKey(key)
	if ck == "" {
		return "", false
	}
	if labels := c.exact[ck]; len(labels) > 0 {
		return single(labels)
	}
	var labels []string
	for _, p := range c.patterns {
		if p.re.MatchString(ck) && !slices.Contains(labels, p.label) {
			labels = append(labels, p.label)
		}
	}
	return single(labels)
}

func single(labels []string) (string, bool) {
	if len(labels) != 1 {
		return "", false
	}
	return labels[0], true
}

// Detect labels the recognized columns of m. A nil map yields an empty,
// non-nil result.
func (c *TieBreakClassifier) Detect(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if label, ok := c.Label(k, v); ok {
			out[k] = label
		}
	}
	return out
}

// Classify returns every column of m, sorted by key, with its label and
// numeric value where one could be read. Unrecognized columns are kept
// with Classified false so the raw value can still be displayed.
func (c *TieBreakClassifier) Classify(m map[string]any) []domain.TieBreak {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]domain.TieBreak, 0, len(keys))
	for _, k := range keys {
		v := m[k]
		label, ok := c.Label(k, v)
		out = append(out, domain.TieBreak{
			Key:        k,
			Label:      label,
			Value:      tieBreakValue(v),
			Classified: ok,
		})
	}
	return out
}

func tieBreakValue(v any) *float64 {
	if obj, ok := v.(map[string]any); ok {
		for _, field := range []string{"value", "score", "points"} {
			if f := FloatPtr(obj[field]); f != nil {
				return f
			}
		}
		return nil
	}
	return FloatPtr(v)
}
