// Copyright © 2024 The moqls authors

package syntax

// Kind tags a node or token in a Tree.
type Kind uint16

const (
	KindUnknown Kind = iota

	// Tokens the engine anchors on.
	KindOpenParen
	KindCloseParen
	KindComma
	KindLessThan
	KindGreaterThan
	KindDot
	KindArrow
	KindOpenBrace
	KindCloseBrace
	KindOpenBracket
	KindCloseBracket
	KindSemicolon
	KindColon
	KindEquals
	KindQuestion
	KindKeyword
	KindPunct

	// Declarations.
	KindCompilationUnit
	KindNamespaceDecl
	KindUsingDirective
	KindClassDecl
	KindInterfaceDecl
	KindStructDecl
	KindRecordDecl
	KindEnumDecl
	KindDelegateDecl
	KindDeclarationList
	KindMethodDecl
	KindConstructorDecl
	KindPropertyDecl
	KindFieldDecl
	KindVariableDecl
	KindVariableDeclarator
	KindEqualsValue
	KindLocalDecl
	KindLocalFunction
	KindParameterList
	KindParameter
	KindImplicitParameter
	KindTypeParameterList
	KindTypeParameter
	KindBaseList
	KindAttributeList
	KindModifier

	// Statements.
	KindBlock
	KindArrowClause
	KindExpressionStatement
	KindReturnStatement
	KindGlobalStatement

	// Expressions.
	KindInvocation
	KindArgumentList
	KindArgument
	KindMemberAccess
	KindLambda
	KindObjectCreation
	KindImplicitObjectCreation
	KindParenthesized
	KindCast
	KindLiteral
	KindDefault
	KindTypeOf
	KindThis

	// Names and types.
	KindIdentifier
	KindGenericName
	KindTypeArgumentList
	KindQualifiedName
	KindPredefinedType
	KindImplicitType
	KindNullableType
	KindArrayType
	KindTupleType

	// Trivia and recovery.
	KindComment
	KindError
	KindOther
)

var kindNames = [...]string{
	KindUnknown:                "unknown",
	KindOpenParen:              "(",
	KindCloseParen:             ")",
	KindComma:                  ",",
	KindLessThan:               "<",
	KindGreaterThan:            ">",
	KindDot:                    ".",
	KindArrow:                  "=>",
	KindOpenBrace:              "{",
	KindCloseBrace:             "}",
	KindOpenBracket:            "[",
	KindCloseBracket:           "]",
	KindSemicolon:              ";",
	KindColon:                  ":",
	KindEquals:                 "=",
	KindQuestion:               "?",
	KindKeyword:                "keyword",
	KindPunct:                  "punct",
	KindCompilationUnit:        "compilation-unit",
	KindNamespaceDecl:          "namespace",
	KindUsingDirective:         "using",
	KindClassDecl:              "class",
	KindInterfaceDecl:          "interface",
	KindStructDecl:             "struct",
	KindRecordDecl:             "record",
	KindEnumDecl:               "enum",
	KindDelegateDecl:           "delegate",
	KindDeclarationList:        "declaration-list",
	KindMethodDecl:             "method",
	KindConstructorDecl:        "constructor",
	KindPropertyDecl:           "property",
	KindFieldDecl:              "field",
	KindVariableDecl:           "variable-declaration",
	KindVariableDeclarator:     "variable-declarator",
	KindEqualsValue:            "equals-value",
	KindLocalDecl:              "local-declaration",
	KindLocalFunction:          "local-function",
	KindParameterList:          "parameter-list",
	KindParameter:              "parameter",
	KindImplicitParameter:      "implicit-parameter",
	KindTypeParameterList:      "type-parameter-list",
	KindTypeParameter:          "type-parameter",
	KindBaseList:               "base-list",
	KindAttributeList:          "attribute-list",
	KindModifier:               "modifier",
	KindBlock:                  "block",
	KindArrowClause:            "arrow-clause",
	KindExpressionStatement:    "expression-statement",
	KindReturnStatement:        "return",
	KindGlobalStatement:        "global-statement",
	KindInvocation:             "invocation",
	KindArgumentList:           "argument-list",
	KindArgument:               "argument",
	KindMemberAccess:           "member-access",
	KindLambda:                 "lambda",
	KindObjectCreation:         "object-creation",
	KindImplicitObjectCreation: "implicit-object-creation",
	KindParenthesized:          "parenthesized",
	KindCast:                   "cast",
	KindLiteral:                "literal",
	KindDefault:                "default",
	KindTypeOf:                 "typeof",
	KindThis:                   "this",
	KindIdentifier:             "identifier",
	KindGenericName:            "generic-name",
	KindTypeArgumentList:       "type-argument-list",
	KindQualifiedName:          "qualified-name",
	KindPredefinedType:         "predefined-type",
	KindImplicitType:           "implicit-type",
	KindNullableType:           "nullable-type",
	KindArrayType:              "array-type",
	KindTupleType:              "tuple-type",
	KindComment:                "comment",
	KindError:                  "error",
	KindOther:                  "other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// IsTypeDecl reports whether k declares a named type.
func (k Kind) IsTypeDecl() bool {
	switch k {
	case KindClassDecl, KindInterfaceDecl, KindStructDecl, KindRecordDecl, KindEnumDecl:
		return true
	}
	return false
}

// IsTypeSyntax reports whether k can appear as a type reference.
func (k Kind) IsTypeSyntax() bool {
	switch k {
	case KindIdentifier, KindGenericName, KindQualifiedName, KindPredefinedType,
		KindImplicitType, KindNullableType, KindArrayType, KindTupleType:
		return true
	}
	return false
}

// IsTrivia reports whether nodes of kind k are folded into token trivia.
func (k Kind) IsTrivia() bool {
	return k == KindComment
}
