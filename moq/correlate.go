// Copyright © 2024 The moqls authors

package moq

import (
	"github.com/rjmurillo/moq.autocomplete/astutil"
	"github.com/rjmurillo/moq.autocomplete/syntax"
)

// Correlation pairs a setup invocation with the mocked invocation in its
// lambda body. Either may be NoNode.
type Correlation struct {
	Setup  syntax.NodeID
	Mocked syntax.NodeID
}

// Found reports whether both ends of the chain were located.
func (c Correlation) Found() bool { return c.Setup.Valid() && c.Mocked.Valid() }

// FindSetup walks the receiver chain of inv, e.g. from Returns in
// mock.Setup(...).Callback(...).Returns(...), down to the setup call. It
// stops at the first receiver that is not an invocation through a member
// access.
func (r SymbolResolver) FindSetup(inv syntax.NodeID) syntax.NodeID {
	t := r.Tree
	for expr := inv; t.Kind(expr) == syntax.KindInvocation; {
		ma := astutil.MemberAccess(t, expr)
		if ma == syntax.NoNode {
			return syntax.NoNode
		}
		if r.IsSetup(expr) {
			return expr
		}
		expr = astutil.Receiver(t, ma)
	}
	return syntax.NoNode
}

// FindMockedInvocation returns the invocation that forms the body of the
// lambda passed as the first argument of setup, e.g. f.Do(1) in
// Setup(f => f.Do(1)).
func FindMockedInvocation(tree *syntax.Tree, setup syntax.NodeID) syntax.NodeID {
	if tree.Kind(setup) != syntax.KindInvocation {
		return syntax.NoNode
	}
	lambda := astutil.FirstArgumentExpr(tree, setup)
	if tree.Kind(lambda) != syntax.KindLambda {
		return syntax.NoNode
	}
	if _, _, ok := astutil.LambdaParameters(tree, lambda); !ok {
		return syntax.NoNode
	}
	body := astutil.LambdaBody(tree, lambda)
	if tree.Kind(body) != syntax.KindInvocation {
		return syntax.NoNode
	}
	return body
}

// Correlate locates the setup and mocked invocations behind a callback or
// return-value invocation.
func (r SymbolResolver) Correlate(callback syntax.NodeID) Correlation {
	c := Correlation{Setup: r.FindSetup(callback), Mocked: syntax.NoNode}
	if c.Setup.Valid() {
		c.Mocked = FindMockedInvocation(r.Tree, c.Setup)
	}
	return c
}

// correlateMatcherSlot recognises an argument list that belongs to the
// mocked invocation of a setup: Setup(f => f.Do(|)). It returns the mocked
// invocation, or NoNode.
func (r SymbolResolver) correlateMatcherSlot(argList syntax.NodeID) syntax.NodeID {
	t := r.Tree
	mocked := t.Parent(argList)
	if t.Kind(mocked) != syntax.KindInvocation || astutil.ArgumentList(t, mocked) != argList {
		return syntax.NoNode
	}
	lambda := t.Parent(mocked)
	if t.Kind(lambda) != syntax.KindLambda {
		return syntax.NoNode
	}
	arg := t.Parent(lambda)
	if t.Kind(arg) != syntax.KindArgument {
		return syntax.NoNode
	}
	setup := t.Parent(t.Parent(arg))
	if t.Kind(t.Parent(arg)) != syntax.KindArgumentList || !r.IsSetup(setup) {
		return syntax.NoNode
	}
	if FindMockedInvocation(t, setup) != mocked {
		return syntax.NoNode
	}
	return mocked
}
