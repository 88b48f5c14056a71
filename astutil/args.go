// Copyright © 2024 The moqls authors

package astutil

import "github.com/rjmurillo/moq.autocomplete/syntax"

// ArgumentList returns the argument list of an invocation or object
// creation.
func ArgumentList(tree *syntax.Tree, call syntax.NodeID) syntax.NodeID {
	if a := tree.Field(call, "arguments"); a != syntax.NoNode {
		return a
	}
	return tree.FirstChild(call, syntax.KindArgumentList)
}

// Arguments returns the argument nodes of an argument list.
func Arguments(tree *syntax.Tree, argList syntax.NodeID) []syntax.NodeID {
	return tree.ChildrenOf(argList, syntax.KindArgument)
}

// ArgumentExpr returns the expression of an argument, skipping any
// "name:" prefix and ref/out/in modifiers.
func ArgumentExpr(tree *syntax.Tree, arg syntax.NodeID) syntax.NodeID {
	named := tree.NamedChildren(arg)
	for i := len(named) - 1; i >= 0; i-- {
		if !tree.FieldIs(named[i], "name") {
			return named[i]
		}
	}
	return syntax.NoNode
}

// FirstArgumentExpr returns the expression of the first argument of an
// invocation, or NoNode.
func FirstArgumentExpr(tree *syntax.Tree, call syntax.NodeID) syntax.NodeID {
	args := Arguments(tree, ArgumentList(tree, call))
	if len(args) == 0 {
		return syntax.NoNode
	}
	return ArgumentExpr(tree, args[0])
}

// ArgumentSeparators returns the comma tokens of an argument list in order.
func ArgumentSeparators(tree *syntax.Tree, argList syntax.NodeID) []syntax.NodeID {
	return tree.ChildrenOf(argList, syntax.KindComma)
}

// LambdaParameters returns the parameter nodes of a lambda. A lambda with a
// single implicit parameter yields that parameter. ok is false when the
// parameter list is absent or malformed.
func LambdaParameters(tree *syntax.Tree, lambda syntax.NodeID) (params []syntax.NodeID, parenthesized bool, ok bool) {
	p := tree.Field(lambda, "parameters")
	if p == syntax.NoNode {
		p = tree.FirstChild(lambda, syntax.KindParameterList, syntax.KindImplicitParameter, syntax.KindIdentifier)
	}
	switch tree.Kind(p) {
	case syntax.KindParameterList:
		return tree.ChildrenOf(p, syntax.KindParameter), true, true
	case syntax.KindImplicitParameter, syntax.KindIdentifier:
		return []syntax.NodeID{p}, false, true
	}
	return nil, false, false
}

// LambdaParameterList returns the parenthesized parameter list of a lambda.
func LambdaParameterList(tree *syntax.Tree, lambda syntax.NodeID) syntax.NodeID {
	p := tree.Field(lambda, "parameters")
	if tree.Kind(p) == syntax.KindParameterList {
		return p
	}
	return tree.FirstChild(lambda, syntax.KindParameterList)
}

// LambdaBody returns the body of a lambda: a block or an expression.
func LambdaBody(tree *syntax.Tree, lambda syntax.NodeID) syntax.NodeID {
	if b := tree.Field(lambda, "body"); b != syntax.NoNode {
		return b
	}
	named := tree.NamedChildren(lambda)
	if len(named) < 2 {
		return syntax.NoNode
	}
	return named[len(named)-1]
}

// ParameterType returns the declared type of a parameter, or NoNode for an
// implicitly typed parameter.
func ParameterType(tree *syntax.Tree, param syntax.NodeID) syntax.NodeID {
	if tree.Kind(param) != syntax.KindParameter {
		return syntax.NoNode
	}
	if t := tree.Field(param, "type"); t != syntax.NoNode {
		return t
	}
	named := tree.NamedChildren(param)
	for _, c := range named {
		if tree.FieldIs(c, "name") {
			break
		}
		if tree.Kind(c).IsTypeSyntax() && len(named) > 1 {
			return c
		}
	}
	return syntax.NoNode
}

// ParameterName returns the name identifier of a parameter.
func ParameterName(tree *syntax.Tree, param syntax.NodeID) syntax.NodeID {
	switch tree.Kind(param) {
	case syntax.KindImplicitParameter, syntax.KindIdentifier:
		return param
	}
	if n := tree.Field(param, "name"); n != syntax.NoNode {
		return n
	}
	ids := tree.ChildrenOf(param, syntax.KindIdentifier)
	if len(ids) == 0 {
		return syntax.NoNode
	}
	return ids[len(ids)-1]
}
