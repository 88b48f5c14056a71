// Copyright © 2024 The moqls authors

package moq

import (
	"fmt"
	"strings"

	"github.com/rjmurillo/moq.autocomplete/astutil"
	"github.com/rjmurillo/moq.autocomplete/syntax"
)

// Rule names of the findings Analyze reports.
const (
	RuleCallbackArity = "callback-arity"
	RuleCallbackType  = "callback-type"
)

// Severity of a finding. Findings are advisory, so Analyze reports
// warnings; hosts may override the severity per rule.
type Severity uint8

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	}
	return "unknown"
}

// Finding is a mismatch between a callback lambda and the mocked method.
type Finding struct {
	Rule     string
	Message  string
	Node     syntax.NodeID
	Span     syntax.Span
	Severity Severity
	Expected int
	Actual   int
	// Index is the parameter position of a callback-type finding.
	Index int
}

// callbackSite is a callback invocation with a parenthesized lambda whose
// parameters can be checked against a correlated mocked invocation.
type callbackSite struct {
	inv    syntax.NodeID
	lambda syntax.NodeID
	params []syntax.NodeID
	mocked syntax.NodeID
	// args is the number of arguments written in the mocked invocation.
	args int
	// references holds one parameter list per candidate method, cut to
	// the written arguments.
	references [][]Param
}

// callbackSite applies the cheap filters, then resolution and
// correlation. Lambdas without parameters are always accepted.
func (r SymbolResolver) callbackSite(inv syntax.NodeID) (callbackSite, bool) {
	t := r.Tree
	if t.Kind(inv) != syntax.KindInvocation || !r.Patterns.IsCallbackName(astutil.MemberName(t, inv)) {
		return callbackSite{}, false
	}
	lambda := astutil.FirstArgumentExpr(t, inv)
	if t.Kind(lambda) != syntax.KindLambda {
		return callbackSite{}, false
	}
	params, parenthesized, ok := astutil.LambdaParameters(t, lambda)
	if !ok || !parenthesized || len(params) == 0 {
		return callbackSite{}, false
	}
	if !r.IsCallbackOrReturn(inv) {
		return callbackSite{}, false
	}
	c := r.Correlate(inv)
	if !c.Found() {
		return callbackSite{}, false
	}
	site := callbackSite{
		inv:    inv,
		lambda: lambda,
		params: params,
		mocked: c.Mocked,
		args:   len(astutil.Arguments(t, astutil.ArgumentList(t, c.Mocked))),
	}
	// A candidate binds the written arguments to its leading parameters;
	// the rest are optional and never reach the callback.
	for _, s := range r.Resolve(c.Mocked).Candidates() {
		if s.Kind == SymbolMethod && len(s.Params) >= site.args {
			site.references = append(site.references, s.Params[:site.args])
		}
	}
	if len(site.references) == 0 {
		site.references = [][]Param{r.argumentParams(c.Mocked)}
	}
	return site, true
}

// argumentParams describes the arguments of the mocked invocation by their
// converted types. It stands in for the signature when the call cannot be
// resolved.
func (r SymbolResolver) argumentParams(inv syntax.NodeID) []Param {
	args := astutil.Arguments(r.Tree, astutil.ArgumentList(r.Tree, inv))
	out := make([]Param, len(args))
	for i, arg := range args {
		typ, _ := r.Host.TypeOf(astutil.ArgumentExpr(r.Tree, arg))
		out[i] = Param{Type: typ}
	}
	return out
}

// lambdaParams returns the lambda parameters with their declared types.
func (r SymbolResolver) lambdaParams(params []syntax.NodeID) []Param {
	out := make([]Param, len(params))
	for i, p := range params {
		out[i].Name = r.Tree.Text(astutil.ParameterName(r.Tree, p))
		if tn := astutil.ParameterType(r.Tree, p); tn != syntax.NoNode {
			out[i].Type, _ = r.Host.TypeOf(tn)
		}
	}
	return out
}

// analyze translates the aggregated outcome into findings. The count rule
// compares the lambda with the arguments written in the mocked call; types
// are compared only when the counts agree.
func (r SymbolResolver) analyze(inv syntax.NodeID) []Finding {
	site, ok := r.callbackSite(inv)
	if !ok {
		return nil
	}
	lambda := r.lambdaParams(site.params)
	if len(lambda) != site.args {
		argList := astutil.ArgumentList(r.Tree, inv)
		return []Finding{{
			Rule:     RuleCallbackArity,
			Message:  fmt.Sprintf("callback should take %d parameter%s to match the mocked method, but takes %d", site.args, plural(site.args), len(lambda)),
			Node:     argList,
			Span:     r.Tree.Span(argList),
			Severity: SeverityWarning,
			Expected: site.args,
			Actual:   len(lambda),
			Index:    -1,
		}}
	}
	outcomes := make([]MatchOutcome, len(site.references))
	for i, ref := range site.references {
		outcomes[i] = Match(ref, lambda)
	}
	o, best := aggregate(outcomes)
	if o.Kind != TypeMismatches {
		return nil
	}
	ref := site.references[best]
	out := make([]Finding, 0, len(o.Indices))
	for _, i := range o.Indices {
		tn := astutil.ParameterType(r.Tree, site.params[i])
		out = append(out, Finding{
			Rule: RuleCallbackType,
			Message: fmt.Sprintf("callback parameter %d is %s, but the mocked method passes %s",
				i+1, lambda[i].Type.Display, ref[i].Type.Display),
			Node:     tn,
			Span:     r.Tree.Span(tn),
			Severity: SeverityWarning,
			Expected: o.Expected,
			Actual:   o.Actual,
			Index:    i,
		})
	}
	return out
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// Fix is a replacement of a callback lambda's parameter list.
type Fix struct {
	Span syntax.Span
	Text string
}

// fix renders the parameter list a mismatching callback should declare.
// Existing parameter names are kept by position.
func (r SymbolResolver) fix(inv syntax.NodeID) (Fix, bool) {
	if len(r.analyze(inv)) == 0 {
		return Fix{}, false
	}
	site, _ := r.callbackSite(inv)
	lambda := r.lambdaParams(site.params)
	ref := site.references[0]
	if len(lambda) == site.args {
		outcomes := make([]MatchOutcome, len(site.references))
		for i, cand := range site.references {
			outcomes[i] = Match(cand, lambda)
		}
		if _, best := aggregate(outcomes); best >= 0 {
			ref = site.references[best]
		}
	}
	list := astutil.LambdaParameterList(r.Tree, site.lambda)
	if list == syntax.NoNode {
		return Fix{}, false
	}
	keep := make([]string, len(lambda))
	for i, p := range lambda {
		keep[i] = p.Name
	}
	if len(ref) != len(lambda) {
		keep = nil
	}
	text := paramList(ref, keep)
	if strings.TrimSpace(text) == "" {
		return Fix{}, false
	}
	return Fix{Span: r.Tree.Span(list), Text: "(" + text + ")"}, true
}
