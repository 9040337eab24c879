package ast

import "fmt"

// CursorKind is the native kind of an AST node as reported by the front-end.
// Values mirror the libclang CXCursorKind names the navigation core was
// designed against.
type CursorKind int

const (
	KindInvalid CursorKind = iota
	KindTranslationUnit

	// Declarations.
	KindNamespace
	KindClassDecl
	KindClassTemplate
	KindClassTemplatePartialSpecialization
	KindStructDecl
	KindUnionDecl
	KindEnumDecl
	KindEnumConstantDecl
	KindFieldDecl
	KindVarDecl
	KindFunctionDecl
	KindFunctionTemplate
	KindCXXMethod
	KindConstructor
	KindDestructor
	KindParmDecl
	KindTemplateTypeParameter
	KindTemplateNonTypeParameter
	KindTemplateTemplateParameter
	KindTypedefDecl
	KindTypeAliasDecl
	KindNamespaceAlias
	KindUsingDirective
	KindUsingDeclaration
	KindAccessSpecifier

	// References.
	KindTypeRef
	KindTemplateRef
	KindNamespaceRef
	KindMemberRef
	KindOverloadedDeclRef

	// Expressions.
	KindDeclRefExpr
	KindMemberRefExpr
	KindCallExpr
	KindUnexposedExpr
	KindIntegerLiteral
	KindFloatingLiteral
	KindStringLiteral
	KindCharacterLiteral
	KindParenExpr
	KindUnaryOperator
	KindBinaryOperator
	KindConditionalOperator
	KindCXXThisExpr
	KindCXXBoolLiteralExpr
	KindCXXNullPtrLiteralExpr

	// Statements.
	KindCompoundStmt
	KindDeclStmt
	KindReturnStmt
	KindIfStmt
	KindForStmt
	KindWhileStmt
	KindDoStmt
	KindSwitchStmt
	KindCaseStmt
	KindBreakStmt
	KindContinueStmt
	KindUnexposedStmt

	// Preprocessing.
	KindMacroDefinition
	KindMacroInstantiation
	KindInclusionDirective
)

var cursorKindNames = map[CursorKind]string{
	KindInvalid:                            "INVALID",
	KindTranslationUnit:                    "TRANSLATION_UNIT",
	KindNamespace:                          "NAMESPACE",
	KindClassDecl:                          "CLASS_DECL",
	KindClassTemplate:                      "CLASS_TEMPLATE",
	KindClassTemplatePartialSpecialization: "CLASS_TEMPLATE_PARTIAL_SPECIALIZATION",
	KindStructDecl:                         "STRUCT_DECL",
	KindUnionDecl:                          "UNION_DECL",
	KindEnumDecl:                           "ENUM_DECL",
	KindEnumConstantDecl:                   "ENUM_CONSTANT_DECL",
	KindFieldDecl:                          "FIELD_DECL",
	KindVarDecl:                            "VAR_DECL",
	KindFunctionDecl:                       "FUNCTION_DECL",
	KindFunctionTemplate:                   "FUNCTION_TEMPLATE",
	KindCXXMethod:                          "CXX_METHOD",
	KindConstructor:                        "CONSTRUCTOR",
	KindDestructor:                         "DESTRUCTOR",
	KindParmDecl:                           "PARM_DECL",
	KindTemplateTypeParameter:              "TEMPLATE_TYPE_PARAMETER",
	KindTemplateNonTypeParameter:           "TEMPLATE_NON_TYPE_PARAMETER",
	KindTemplateTemplateParameter:          "TEMPLATE_TEMPLATE_PARAMETER",
	KindTypedefDecl:                        "TYPEDEF_DECL",
	KindTypeAliasDecl:                      "TYPE_ALIAS_DECL",
	KindNamespaceAlias:                     "NAMESPACE_ALIAS",
	KindUsingDirective:                     "USING_DIRECTIVE",
	KindUsingDeclaration:                   "USING_DECLARATION",
	KindAccessSpecifier:                    "CXX_ACCESS_SPEC_DECL",
	KindTypeRef:                            "TYPE_REF",
	KindTemplateRef:                        "TEMPLATE_REF",
	KindNamespaceRef:                       "NAMESPACE_REF",
	KindMemberRef:                          "MEMBER_REF",
	KindOverloadedDeclRef:                  "OVERLOADED_DECL_REF",
	KindDeclRefExpr:                        "DECL_REF_EXPR",
	KindMemberRefExpr:                      "MEMBER_REF_EXPR",
	KindCallExpr:                           "CALL_EXPR",
	KindUnexposedExpr:                      "UNEXPOSED_EXPR",
	KindIntegerLiteral:                     "INTEGER_LITERAL",
	KindFloatingLiteral:                    "FLOATING_LITERAL",
	KindStringLiteral:                      "STRING_LITERAL",
	KindCharacterLiteral:                   "CHARACTER_LITERAL",
	KindParenExpr:                          "PAREN_EXPR",
	KindUnaryOperator:                      "UNARY_OPERATOR",
	KindBinaryOperator:                     "BINARY_OPERATOR",
	KindConditionalOperator:                "CONDITIONAL_OPERATOR",
	KindCXXThisExpr:                        "CXX_THIS_EXPR",
	KindCXXBoolLiteralExpr:                 "CXX_BOOL_LITERAL_EXPR",
	KindCXXNullPtrLiteralExpr:              "CXX_NULL_PTR_LITERAL_EXPR",
	KindCompoundStmt:                       "COMPOUND_STMT",
	KindDeclStmt:                           "DECL_STMT",
	KindReturnStmt:                         "RETURN_STMT",
	KindIfStmt:                             "IF_STMT",
	KindForStmt:                            "FOR_STMT",
	KindWhileStmt:                          "WHILE_STMT",
	KindDoStmt:                             "DO_STMT",
	KindSwitchStmt:                         "SWITCH_STMT",
	KindCaseStmt:                           "CASE_STMT",
	KindBreakStmt:                          "BREAK_STMT",
	KindContinueStmt:                       "CONTINUE_STMT",
	KindUnexposedStmt:                      "UNEXPOSED_STMT",
	KindMacroDefinition:                    "MACRO_DEFINITION",
	KindMacroInstantiation:                 "MACRO_INSTANTIATION",
	KindInclusionDirective:                 "INCLUSION_DIRECTIVE",
}

func (k CursorKind) String() string {
	if name, ok := cursorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CursorKind(%d)", int(k))
}

// IsDeclaration reports whether k names a declaration.
func (k CursorKind) IsDeclaration() bool {
	return k >= KindNamespace && k <= KindAccessSpecifier
}

// IsReference reports whether k is one of the non-expression reference kinds.
func (k CursorKind) IsReference() bool {
	return k >= KindTypeRef && k <= KindOverloadedDeclRef
}

// IsExpression reports whether k is an expression kind.
func (k CursorKind) IsExpression() bool {
	return k >= KindDeclRefExpr && k <= KindCXXNullPtrLiteralExpr
}

// IsStatement reports whether k is a statement kind.
func (k CursorKind) IsStatement() bool {
	return k >= KindCompoundStmt && k <= KindUnexposedStmt
}

// TypeKind is the kind of the type attached to a cursor. Dependent is the
// distinguished marker for constructs whose meaning depends on an
// uninstantiated template parameter.
type TypeKind int

const (
	TypeInvalid TypeKind = iota
	TypeUnexposed
	TypeDependent
	TypeRecord
	TypeEnum
	TypeTypedef
	TypeFunctionProto
	TypeBuiltin
)

func (k TypeKind) String() string {
	switch k {
	case TypeInvalid:
		return "INVALID"
	case TypeUnexposed:
		return "UNEXPOSED"
	case TypeDependent:
		return "DEPENDENT"
	case TypeRecord:
		return "RECORD"
	case TypeEnum:
		return "ENUM"
	case TypeTypedef:
		return "TYPEDEF"
	case TypeFunctionProto:
		return "FUNCTIONPROTO"
	case TypeBuiltin:
		return "BUILTIN"
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenPunctuation TokenKind = iota
	TokenKeyword
	TokenIdentifier
	TokenLiteral
	TokenComment
)

func (k TokenKind) String() string {
	switch k {
	case TokenPunctuation:
		return "PUNCTUATION"
	case TokenKeyword:
		return "KEYWORD"
	case TokenIdentifier:
		return "IDENTIFIER"
	case TokenLiteral:
		return "LITERAL"
	case TokenComment:
		return "COMMENT"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Severity is the severity of a diagnostic.
type Severity int

const (
	SeverityIgnored Severity = iota
	SeverityNote
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityIgnored:
		return "ignored"
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}
