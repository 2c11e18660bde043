package domain

import (
	"fmt"
	"strings"
)

// Category is a content category a repository is loaded by.
// Code categories double as the language tag stored on documents.
type Category int

// Available categories.
const (
	// CategoryJava loads Java sources.
	CategoryJava Category = iota + 1

	// CategoryPython loads Python sources.
	CategoryPython

	// CategoryJavaScript loads JavaScript sources.
	CategoryJavaScript

	// CategoryGeneralUnstructured loads documentation and data files.
	CategoryGeneralUnstructured
)

// AllCategories returns every category in load order.
func AllCategories() []Category {
	return []Category{
		CategoryJava,
		CategoryPython,
		CategoryJavaScript,
		CategoryGeneralUnstructured,
	}
}

// String returns the tag used in document metadata and configuration.
func (c Category) String() string {
	switch c {
	case CategoryJava:
		return "java"
	case CategoryPython:
		return "python"
	case CategoryJavaScript:
		return "javascript"
	case CategoryGeneralUnstructured:
		return "general_unstructured"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryJava, CategoryPython, CategoryJavaScript, CategoryGeneralUnstructured:
		return true
	default:
		return false
	}
}

// IsCode returns true for programming-language categories.
func (c Category) IsCode() bool {
	return c == CategoryJava || c == CategoryPython || c == CategoryJavaScript
}

// Extensions returns the file extensions (without dot) matched by the category.
func (c Category) Extensions() []string {
	switch c {
	case CategoryJava:
		return []string{"java"}
	case CategoryPython:
		return []string{"py"}
	case CategoryJavaScript:
		return []string{"js", "jsx", "mjs", "cjs"}
	case CategoryGeneralUnstructured:
		return []string{"pdf", "docx", "md", "txt", "xml", "json"}
	default:
		return nil
	}
}

// ParseCategory parses a category tag. Common aliases ("js", "py") are accepted.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "java":
		return CategoryJava, nil
	case "python", "py":
		return CategoryPython, nil
	case "javascript", "js":
		return CategoryJavaScript, nil
	case "general_unstructured", "general", "unstructured":
		return CategoryGeneralUnstructured, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCategory, s)
	}
}
