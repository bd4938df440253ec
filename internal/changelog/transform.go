package changelog

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Property selects the pull request field a label extractor reads.
type Property int

const (
	// PropertyBody is the default source for extractors.
	PropertyBody Property = iota
	PropertyTitle
	PropertyAuthor
	PropertyMilestone
	// PropertyUnknown marks an on_property value that names no field.
	PropertyUnknown
)

var propertyNames = map[string]Property{
	"":          PropertyBody,
	"body":      PropertyBody,
	"title":     PropertyTitle,
	"author":    PropertyAuthor,
	"milestone": PropertyMilestone,
}

// ParseProperty maps an on_property value to a Property.
func ParseProperty(s string) Property {
	if p, ok := propertyNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p
	}
	return PropertyUnknown
}

// String returns the configuration name of the property.
func (p Property) String() string {
	switch p {
	case PropertyBody:
		return "body"
	case PropertyTitle:
		return "title"
	case PropertyAuthor:
		return "author"
	case PropertyMilestone:
		return "milestone"
	default:
		return "unknown"
	}
}

// value returns the selected field and whether the PR has it.
// Milestone is absent when empty; unknown properties are always absent.
func (p Property) value(pr *PullRequest) (string, bool) {
	switch p {
	case PropertyBody:
		return pr.Body, true
	case PropertyTitle:
		return pr.Title, true
	case PropertyAuthor:
		return pr.Author, true
	case PropertyMilestone:
		return pr.Milestone, pr.Milestone != ""
	default:
		return "", false
	}
}

// Transformer is a compiled find/replace rule.
type Transformer struct {
	Pattern *regexp.Regexp
	// Target uses Go expansion syntax (${1}); see CompileTransformers.
	Target     string
	OnProperty Property
	// property keeps the raw on_property text for diagnostics.
	property string
}

// RuleError describes a rule whose pattern failed to compile.
type RuleError struct {
	Pattern string
	Err     error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("bad replacer regex %q: %v", e.Pattern, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// CompileRule compiles a single rule.
//
// The first `\\` in the pattern is reduced to `\` before compiling, so
// patterns double-escaped by JSON configuration keep working. Targets may use
// $1, $&, $<name> references, which are rewritten to Go expansion syntax.
func CompileRule(rule Rule) (Transformer, error) {
	source := strings.Replace(rule.Pattern, `\\`, `\`, 1)
	re, err := regexp.Compile(source)
	if err != nil {
		return Transformer{}, &RuleError{Pattern: rule.Pattern, Err: err}
	}
	return Transformer{
		Pattern:    re,
		Target:     expandTarget(rule.Target, re.NumSubexp()),
		OnProperty: ParseProperty(rule.OnProperty),
		property:   rule.OnProperty,
	}, nil
}

// CompileTransformers compiles every rule, dropping the ones that fail.
// Each dropped rule is reported through logger; a bad rule never affects the others.
func CompileTransformers(rules []Rule, logger *slog.Logger) []Transformer {
	if logger == nil {
		logger = slog.Default()
	}

	compiled := make([]Transformer, 0, len(rules))
	for _, rule := range rules {
		t, err := CompileRule(rule)
		if err != nil {
			logger.Warn("skipping rule", "pattern", rule.Pattern, "error", err)
			continue
		}
		compiled = append(compiled, t)
	}
	return compiled
}

// Transform applies each transformer in order, feeding each result into the next.
func Transform(text string, transformers []Transformer) string {
	for _, t := range transformers {
		if t.Pattern == nil {
			continue
		}
		text = t.Pattern.ReplaceAllString(text, t.Target)
	}
	return text
}

// expandTarget rewrites replacement references into regexp.Expand syntax:
// $1 becomes ${1}, $& becomes ${0}, $<name> becomes ${name}. A two-digit
// reference is only read as such when the pattern has that many groups, so
// with one group $12 is group 1 followed by "2". References to groups the
// pattern lacks, $0 included, stay literal text. $$ is a literal dollar.
func expandTarget(target string, groups int) string {
	if !strings.Contains(target, "$") {
		return target
	}

	var b strings.Builder
	for i := 0; i < len(target); i++ {
		ch := target[i]
		if ch != '$' || i+1 >= len(target) {
			if ch == '$' {
				b.WriteString("$$")
				continue
			}
			b.WriteByte(ch)
			continue
		}

		next := target[i+1]
		switch {
		case next == '$':
			b.WriteString("$$")
			i++
		case next == '&':
			b.WriteString("${0}")
			i++
		case isDigit(next):
			first := int(next - '0')
			if i+2 < len(target) && isDigit(target[i+2]) {
				if n := first*10 + int(target[i+2]-'0'); n >= 1 && n <= groups {
					b.WriteString("${" + strconv.Itoa(n) + "}")
					i += 2
					continue
				}
			}
			if first >= 1 && first <= groups {
				b.WriteString("${" + strconv.Itoa(first) + "}")
				i++
				continue
			}
			b.WriteString("$$")
		case next == '<':
			end := strings.IndexByte(target[i+2:], '>')
			if end < 0 {
				b.WriteString("$$")
				continue
			}
			b.WriteString("${" + target[i+2:i+2+end] + "}")
			i += 2 + end
		case next == '{':
			// already Go syntax
			b.WriteByte(ch)
		default:
			b.WriteString("$$")
		}
	}
	return b.String()
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
