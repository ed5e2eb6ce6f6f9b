package domain

import "errors"

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language identifies the programming language a room is configured for.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangCPP        Language = "cpp"
	LangJava       Language = "java"
	LangC          Language = "c"
)

// ParseLanguage validates a client-supplied language string.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LangJavaScript, LangPython, LangCPP, LangJava, LangC:
		return Language(s), nil
	}
	return "", ErrUnsupportedLanguage
}

// DefaultCode is the placeholder a fresh code buffer starts with.
func (l Language) DefaultCode() string {
	if l == LangPython {
		return "# Start coding here..."
	}
	return "// Start coding here..."
}
