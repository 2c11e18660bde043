package chunker

import "github.com/custodia-labs/repochat/internal/core/domain"

// Code separators stop at the space separator so a single construct
// larger than the chunk size is kept whole rather than cut mid-token.

// JavaSeparators returns the Java split points, coarsest first.
func JavaSeparators() []string {
	return []string{
		"\nclass ", "\npublic ", "\nprotected ", "\nprivate ", "\nstatic ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ",
	}
}

// PythonSeparators returns the Python split points, coarsest first.
func PythonSeparators() []string {
	return []string{"\nclass ", "\ndef ", "\n\tdef ", "\n\n", "\n", " "}
}

// JavaScriptSeparators returns the JavaScript split points, coarsest first.
func JavaScriptSeparators() []string {
	return []string{
		"\nfunction ", "\nconst ", "\nlet ", "\nvar ", "\nclass ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ", "\ndefault ",
		"\n\n", "\n", " ",
	}
}

// GenericSeparators returns the prose split points. The trailing empty
// separator splits between characters as a last resort.
func GenericSeparators() []string {
	return []string{"\n\n", "\n", " ", ""}
}

// SeparatorsFor returns the separators for a category.
func SeparatorsFor(c domain.Category) []string {
	switch c {
	case domain.CategoryJava:
		return JavaSeparators()
	case domain.CategoryPython:
		return PythonSeparators()
	case domain.CategoryJavaScript:
		return JavaScriptSeparators()
	default:
		return GenericSeparators()
	}
}
