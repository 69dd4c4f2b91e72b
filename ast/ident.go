package ast

// reservedWords are the ECMAScript reserved words plus the strict mode
// future reserved words. They cannot be used as binding names.
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true, "if": true,
	"import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true, "let": true, "static": true,
	"implements": true, "interface": true, "package": true, "private": true,
	"protected": true, "public": true, "await": true,
}

// IsIdentifierName reports whether s has the shape of a JavaScript
// IdentifierName restricted to ASCII: a letter, '_' or '$' followed by
// letters, digits, '_' or '$'. Reserved words are identifier names too;
// they are valid after a dot.
func IsIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// IsReservedWord reports whether s is a reserved word.
func IsReservedWord(s string) bool {
	return reservedWords[s]
}

// IsBindingName reports whether s can name a function or variable.
func IsBindingName(s string) bool {
	return IsIdentifierName(s) && !IsReservedWord(s)
}
