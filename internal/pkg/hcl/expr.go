package hcl

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

var (
	referenceRe  = regexp.MustCompile(`<\+([^<>]*)>`)
	methodCallRe = regexp.MustCompile(`\.[A-Za-z_][A-Za-z0-9_]*\(`)
)

// SingleReference returns the reference inside s when s consists of exactly
// one "<+...>" expression, e.g. "pipeline.name" for "<+pipeline.name>".
func SingleReference(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	m := referenceRe.FindStringSubmatchIndex(trimmed)
	if m == nil || m[0] != 0 || m[1] != len(trimmed) {
		return "", false
	}
	return strings.TrimSpace(trimmed[m[2]:m[3]]), true
}

// ToTemplate rewrites a string holding "<+...>" references into an HCL
// template with "${...}" interpolations. Literal HCL template markers are
// escaped.
func ToTemplate(s string) string {
	var b strings.Builder

	last := 0
	for _, m := range referenceRe.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(escapeTemplate(s[last:m[0]]))
		b.WriteString("${")
		b.WriteString(strings.TrimSpace(s[m[2]:m[3]]))
		b.WriteString("}")
		last = m[1]
	}
	b.WriteString(escapeTemplate(s[last:]))

	return b.String()
}

func escapeTemplate(s string) string {
	s = strings.ReplaceAll(s, "${", "$${")
	return strings.ReplaceAll(s, "%{", "%%{")
}

// CheckExpression reports syntax problems in the "<+...>" references held by
// s. References using method-call syntax are resolved by the execution engine
// and are only checked for being non-empty.
func CheckExpression(s string) error {
	matches := referenceRe.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		if strings.Contains(s, "<+") {
			return errors.New("unterminated expression")
		}
		return nil
	}

	var errs []error

	for _, m := range matches {
		ref := strings.TrimSpace(m[1])
		if ref == "" {
			errs = append(errs, errors.New("empty expression"))
			continue
		}
		if methodCallRe.MatchString(ref) {
			continue
		}
		if _, diags := hclsyntax.ParseExpression([]byte(ref), "<expr>", hcl.InitialPos); diags.HasErrors() {
			errs = append(errs, fmt.Errorf("%s: %s", ref, diags.Errs()[0]))
		}
	}

	if rest := referenceRe.ReplaceAllString(s, ""); strings.Contains(rest, "<+") {
		errs = append(errs, errors.New("unterminated expression"))
	}

	return errors.Join(errs...)
}

// EngineReference reports whether ref uses method-call syntax, such as
// secrets.getValue("token"). Those are only resolvable by the execution
// engine.
func EngineReference(ref string) bool { return methodCallRe.MatchString(ref) }
