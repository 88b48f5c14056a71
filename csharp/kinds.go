// Copyright © 2024 The moqls authors

package csharp

import "github.com/rjmurillo/moq.autocomplete/syntax"

var tokenKinds = map[string]syntax.Kind{
	"(":  syntax.KindOpenParen,
	")":  syntax.KindCloseParen,
	",":  syntax.KindComma,
	"<":  syntax.KindLessThan,
	">":  syntax.KindGreaterThan,
	".":  syntax.KindDot,
	"=>": syntax.KindArrow,
	"{":  syntax.KindOpenBrace,
	"}":  syntax.KindCloseBrace,
	"[":  syntax.KindOpenBracket,
	"]":  syntax.KindCloseBracket,
	";":  syntax.KindSemicolon,
	":":  syntax.KindColon,
	"=":  syntax.KindEquals,
	"?":  syntax.KindQuestion,
}

var nodeKinds = map[string]syntax.Kind{
	"compilation_unit":                    syntax.KindCompilationUnit,
	"namespace_declaration":               syntax.KindNamespaceDecl,
	"file_scoped_namespace_declaration":   syntax.KindNamespaceDecl,
	"using_directive":                     syntax.KindUsingDirective,
	"class_declaration":                   syntax.KindClassDecl,
	"interface_declaration":               syntax.KindInterfaceDecl,
	"struct_declaration":                  syntax.KindStructDecl,
	"record_declaration":                  syntax.KindRecordDecl,
	"record_struct_declaration":           syntax.KindRecordDecl,
	"enum_declaration":                    syntax.KindEnumDecl,
	"delegate_declaration":                syntax.KindDelegateDecl,
	"declaration_list":                    syntax.KindDeclarationList,
	"method_declaration":                  syntax.KindMethodDecl,
	"constructor_declaration":             syntax.KindConstructorDecl,
	"property_declaration":                syntax.KindPropertyDecl,
	"field_declaration":                   syntax.KindFieldDecl,
	"variable_declaration":                syntax.KindVariableDecl,
	"variable_declarator":                 syntax.KindVariableDeclarator,
	"equals_value_clause":                 syntax.KindEqualsValue,
	"local_declaration_statement":         syntax.KindLocalDecl,
	"local_function_statement":            syntax.KindLocalFunction,
	"parameter_list":                      syntax.KindParameterList,
	"parameter":                           syntax.KindParameter,
	"implicit_parameter":                  syntax.KindImplicitParameter,
	"type_parameter_list":                 syntax.KindTypeParameterList,
	"type_parameter":                      syntax.KindTypeParameter,
	"base_list":                           syntax.KindBaseList,
	"attribute_list":                      syntax.KindAttributeList,
	"modifier":                            syntax.KindModifier,
	"block":                               syntax.KindBlock,
	"arrow_expression_clause":             syntax.KindArrowClause,
	"expression_statement":                syntax.KindExpressionStatement,
	"return_statement":                    syntax.KindReturnStatement,
	"global_statement":                    syntax.KindGlobalStatement,
	"invocation_expression":               syntax.KindInvocation,
	"argument_list":                       syntax.KindArgumentList,
	"argument":                            syntax.KindArgument,
	"member_access_expression":            syntax.KindMemberAccess,
	"lambda_expression":                   syntax.KindLambda,
	"parenthesized_lambda_expression":     syntax.KindLambda,
	"simple_lambda_expression":            syntax.KindLambda,
	"object_creation_expression":          syntax.KindObjectCreation,
	"implicit_object_creation_expression": syntax.KindImplicitObjectCreation,
	"parenthesized_expression":            syntax.KindParenthesized,
	"cast_expression":                     syntax.KindCast,
	"default_expression":                  syntax.KindDefault,
	"typeof_expression":                   syntax.KindTypeOf,
	"this_expression":                     syntax.KindThis,
	"this":                                syntax.KindThis,
	"integer_literal":                     syntax.KindLiteral,
	"real_literal":                        syntax.KindLiteral,
	"string_literal":                      syntax.KindLiteral,
	"verbatim_string_literal":             syntax.KindLiteral,
	"raw_string_literal":                  syntax.KindLiteral,
	"character_literal":                   syntax.KindLiteral,
	"boolean_literal":                     syntax.KindLiteral,
	"null_literal":                        syntax.KindLiteral,
	"interpolated_string_expression":      syntax.KindLiteral,
	"identifier":                          syntax.KindIdentifier,
	"generic_name":                        syntax.KindGenericName,
	"type_argument_list":                  syntax.KindTypeArgumentList,
	"qualified_name":                      syntax.KindQualifiedName,
	"alias_qualified_name":                syntax.KindQualifiedName,
	"predefined_type":                     syntax.KindPredefinedType,
	"implicit_type":                       syntax.KindImplicitType,
	"nullable_type":                       syntax.KindNullableType,
	"array_type":                          syntax.KindArrayType,
	"tuple_type":                          syntax.KindTupleType,
	"comment":                             syntax.KindComment,
	"ERROR":                               syntax.KindError,
}
