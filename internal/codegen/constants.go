// Package codegen renders frozen lexer tables as Go declarations.
package codegen

import "strings"

// DefaultPrefix starts every rendered identifier when none is configured.
const DefaultPrefix = "Lexer"

// Type names used in rendered snapshots, without the prefix
const (
	NfaStateType  = "NfaState"
	CompositeType = "Composite"
	LiteralType   = "Literal"
	ResumeType    = "Resume"
	LexStateType  = "LexState"
)

// Variable names used in rendered snapshots, without the prefix
const (
	NoKindName      = "NoKind"
	LexStateNames   = "LexStateNames"
	KindNames       = "Kinds"
	NewLexStateName = "NewLexState"
	ActionsName     = "Actions"
	ToSkipName      = "ToSkip"
	ToMoreName      = "ToMore"
	ToTokenName     = "ToToken"
	ToSpecialName   = "ToSpecial"
	VectorsName     = "Vectors"
	MethodsName     = "NonASCIIMethods"
	LexStatesName   = "LexStates"
)

// Ident joins prefix and name into a Go identifier. Characters that cannot
// appear in an identifier become underscores.
func Ident(prefix, name string) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	for i, r := range UpperFirst(name) {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 && prefix == "" {
				sb.WriteRune('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// UpperFirst converts the first character of a string to uppercase.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c&^0x20) + s[1:]
	}
	return s
}
