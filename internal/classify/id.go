package classify

import "github.com/jward/cxxnav/internal/ast"

// ID is the semantic category of a node.
type ID int

const (
	Unsupported ID = iota
	Namespace
	Class
	Struct
	Enum
	EnumValue
	Union
	Field
	LocalVariable
	Function
	Method
	FunctionParameter
	TemplateTypeParameter
	TemplateNonTypeParameter
	TemplateTemplateParameter
	MacroDefinition
	MacroInstantiation
	Typedef
	NamespaceAlias
	UsingDirective
	UsingDeclaration
)

var idNames = [...]string{
	Unsupported:               "Unsupported",
	Namespace:                 "Namespace",
	Class:                     "Class",
	Struct:                    "Struct",
	Enum:                      "Enum",
	EnumValue:                 "EnumValue",
	Union:                     "Union",
	Field:                     "Field",
	LocalVariable:             "LocalVariable",
	Function:                  "Function",
	Method:                    "Method",
	FunctionParameter:         "FunctionParameter",
	TemplateTypeParameter:     "TemplateTypeParameter",
	TemplateNonTypeParameter:  "TemplateNonTypeParameter",
	TemplateTemplateParameter: "TemplateTemplateParameter",
	MacroDefinition:           "MacroDefinition",
	MacroInstantiation:        "MacroInstantiation",
	Typedef:                   "Typedef",
	NamespaceAlias:            "NamespaceAlias",
	UsingDirective:            "UsingDirective",
	UsingDeclaration:          "UsingDeclaration",
}

func (id ID) String() string {
	if id < 0 || int(id) >= len(idNames) {
		return idNames[Unsupported]
	}
	return idNames[id]
}

// MarshalText lets IDs appear by name in JSON output.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

var kindTable = map[ast.CursorKind]ID{
	ast.KindNamespace:                          Namespace,
	ast.KindClassDecl:                          Class,
	ast.KindClassTemplate:                      Class,
	ast.KindClassTemplatePartialSpecialization: Class,
	ast.KindStructDecl:                         Struct,
	ast.KindEnumDecl:                           Enum,
	ast.KindEnumConstantDecl:                   EnumValue,
	ast.KindUnionDecl:                          Union,
	ast.KindFieldDecl:                          Field,
	ast.KindVarDecl:                            LocalVariable,
	ast.KindFunctionDecl:                       Function,
	ast.KindFunctionTemplate:                   Function,
	ast.KindCXXMethod:                          Method,
	ast.KindConstructor:                        Method,
	ast.KindDestructor:                         Method,
	ast.KindParmDecl:                           FunctionParameter,
	ast.KindTemplateTypeParameter:              TemplateTypeParameter,
	ast.KindTemplateNonTypeParameter:           TemplateNonTypeParameter,
	ast.KindTemplateTemplateParameter:          TemplateTemplateParameter,
	ast.KindMacroDefinition:                    MacroDefinition,
	ast.KindMacroInstantiation:                 MacroInstantiation,
	ast.KindTypedefDecl:                        Typedef,
	ast.KindTypeAliasDecl:                      Typedef,
	ast.KindNamespaceAlias:                     NamespaceAlias,
	ast.KindUsingDirective:                     UsingDirective,
	ast.KindUsingDeclaration:                   UsingDeclaration,
}

// FromKind maps a native kind through the fixed table. Unmapped kinds are
// Unsupported.
func FromKind(k ast.CursorKind) ID {
	if id, ok := kindTable[k]; ok {
		return id
	}
	return Unsupported
}
