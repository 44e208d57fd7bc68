package ast

import "fmt"

// Kind identifies what a cursor refers to. The set mirrors the declaration
// kinds a libclang-style index exposes for C and C++ sources.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindTranslationUnit
	KindNamespace
	KindClassDecl
	KindStructDecl
	KindUnionDecl
	KindEnumDecl
	KindEnumConstantDecl
	KindFunctionDecl
	KindCXXMethod
	KindConstructor
	KindDestructor
	KindFieldDecl
	KindVarDecl
	KindParmDecl
	KindTypedefDecl
	KindTypeAliasDecl
	KindClassTemplate
	KindFunctionTemplate
	KindLinkageSpec
	KindUsingDirective
	KindUsingDeclaration
	KindInclusionDirective
	KindMacroDefinition
	KindCXXAccessSpecifier
	KindCompoundStmt
)

var kindNames = [...]string{
	KindInvalid:            "InvalidCursor",
	KindTranslationUnit:    "TranslationUnit",
	KindNamespace:          "Namespace",
	KindClassDecl:          "ClassDecl",
	KindStructDecl:         "StructDecl",
	KindUnionDecl:          "UnionDecl",
	KindEnumDecl:           "EnumDecl",
	KindEnumConstantDecl:   "EnumConstantDecl",
	KindFunctionDecl:       "FunctionDecl",
	KindCXXMethod:          "CXXMethod",
	KindConstructor:        "Constructor",
	KindDestructor:         "Destructor",
	KindFieldDecl:          "FieldDecl",
	KindVarDecl:            "VarDecl",
	KindParmDecl:           "ParmDecl",
	KindTypedefDecl:        "TypedefDecl",
	KindTypeAliasDecl:      "TypeAliasDecl",
	KindClassTemplate:      "ClassTemplate",
	KindFunctionTemplate:   "FunctionTemplate",
	KindLinkageSpec:        "LinkageSpec",
	KindUsingDirective:     "UsingDirective",
	KindUsingDeclaration:   "UsingDeclaration",
	KindInclusionDirective: "InclusionDirective",
	KindMacroDefinition:    "MacroDefinition",
	KindCXXAccessSpecifier: "CXXAccessSpecifier",
	KindCompoundStmt:       "CompoundStmt",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a kind name as printed by String back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return KindInvalid, false
}

// IsDeclaration reports whether the kind names a declaration.
func (k Kind) IsDeclaration() bool {
	return k >= KindNamespace && k <= KindUsingDeclaration
}

// DeclarationKinds returns every kind for which IsDeclaration holds, in
// declaration order.
func DeclarationKinds() []Kind {
	kinds := make([]Kind, 0, KindUsingDeclaration-KindNamespace+1)
	for k := KindNamespace; k <= KindUsingDeclaration; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// IsRecord reports whether the kind is a class, struct or union.
func (k Kind) IsRecord() bool {
	return k == KindClassDecl || k == KindStructDecl || k == KindUnionDecl
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown cursor kind %q", text)
	}
	*k = parsed
	return nil
}
