package weakauras

import "fmt"

// DeserializationError reports an import-string codec failure or a
// shape-conversion failure on decoded data.
type DeserializationError struct {
	Msg string
}

func (e *DeserializationError) Error() string {
	return "deserialization error: " + e.Msg
}

// LuaParseError reports a SavedVariables parse failure.
type LuaParseError struct {
	Msg string
}

func (e *LuaParseError) Error() string {
	return "lua parse error: " + e.Msg
}

func parseErrorf(format string, args ...interface{}) error {
	return &LuaParseError{Msg: fmt.Sprintf(format, args...)}
}

// FileNotFoundError is the distinguished I/O case a caller may treat as
// "empty state" when loading.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return "file not found: " + e.Path
}
