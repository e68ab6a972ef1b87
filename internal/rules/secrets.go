package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DeusData/elixir-analyzer/internal/ast"
)

// sensitiveKeys are keyword and attribute names whose string values are
// treated as credentials. Matching is exact and case-sensitive.
var sensitiveKeys = map[string]bool{
	"password": true, "passwd": true, "pass": true,
	"secret": true, "secret_key": true, "secret_key_base": true,
	"token": true, "auth_token": true, "access_token": true,
	"api_key": true, "api_secret": true, "apikey": true,
	"private_key": true, "signing_key": true, "encryption_key": true,
	"credentials": true, "credential": true,
}

type secretPrefix struct {
	prefix string
	kind   string
}

// secretPrefixes is ordered longest prefix first; ties keep table order.
var secretPrefixes = byLength([]secretPrefix{
	{"sk_live_", "Stripe secret key"},
	{"sk_test_", "Stripe test secret key"},
	{"pk_live_", "Stripe publishable key"},
	{"pk_test_", "Stripe test publishable key"},
	{"rk_live_", "Stripe restricted key"},
	{"rk_test_", "Stripe test restricted key"},
	{"AKIA", "AWS access key"},
	{"ASIA", "AWS temporary access key"},
	{"ghp_", "GitHub personal access token"},
	{"gho_", "GitHub OAuth access token"},
	{"ghs_", "GitHub server-to-server token"},
	{"ghr_", "GitHub refresh token"},
	{"github_pat_", "GitHub fine-grained PAT"},
	{"glpat-", "GitLab personal/project/group access token"},
	{"gloas-", "GitLab OAuth application secret"},
	{"gldt-", "GitLab deploy token"},
	{"glrt-", "GitLab runner authentication token"},
	{"glcbt-", "GitLab CI/CD job token"},
	{"glptt-", "GitLab trigger token"},
	{"glagent-", "GitLab agent token"},
	{"xoxb-", "Slack bot token"},
	{"xoxp-", "Slack user token"},
	{"xoxs-", "Slack session token"},
	{"SG.", "SendGrid API key"},
})

func byLength(p []secretPrefix) []secretPrefix {
	sort.SliceStable(p, func(i, j int) bool { return len(p[i].prefix) > len(p[j].prefix) })
	return p
}

// HardcodedSecret reports credentials written as string literals: values of
// sensitive keyword keys, sensitive module attributes, and any string that
// starts with a known vendor token prefix.
type HardcodedSecret struct{}

func (HardcodedSecret) Key() string { return "S201" }

func (r HardcodedSecret) Detect(tree *ast.Node) []Finding {
	var findings []Finding
	report := func(msg string, line int) {
		findings = append(findings, Finding{RuleKey: r.Key(), Message: msg, Line: line})
	}
	tree.Walk(func(n *ast.Node) {
		switch n.Kind {
		case ast.KindKeywordPair:
			checkKeywordPair(n, report)
		case "@":
			checkAttribute(n, report)
		case ast.KindLiteral:
			checkPrefix(n, report)
		}
	})
	return findings
}

func checkKeywordPair(n *ast.Node, report func(string, int)) {
	if !n.HasValue || !sensitiveKeys[n.Value] {
		return
	}
	value := n.Child(0)
	if !isNonEmptyString(value) {
		return
	}
	line := value.Line
	if line <= 0 {
		line = n.Line
	}
	report(credentialMessage(n.Value), line)
}

func checkAttribute(n *ast.Node, report func(string, int)) {
	attr := n.Child(0)
	if attr == nil || !sensitiveKeys[attr.Kind] {
		return
	}
	if !isNonEmptyString(attr.Child(0)) {
		return
	}
	line := n.Line
	if line <= 0 {
		line = attr.Line
	}
	report(credentialMessage(attr.Kind), line)
}

func checkPrefix(n *ast.Node, report func(string, int)) {
	if n.Value == "" {
		return
	}
	for _, p := range secretPrefixes {
		if strings.HasPrefix(n.Value, p.prefix) {
			report(fmt.Sprintf("String looks like a %s (prefix: %s)", p.kind, p.prefix), n.Line)
			return
		}
	}
}

func credentialMessage(key string) string {
	return `"` + key + `" contains a hardcoded credential`
}

func isNonEmptyString(n *ast.Node) bool {
	return n != nil && n.Kind == ast.KindLiteral && n.HasValue && n.Value != ""
}
