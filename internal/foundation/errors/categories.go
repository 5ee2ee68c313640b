package errors

// ErrorCategory groups errors by the part of the build that produced them.
// Each category maps to one process exit code.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation" // bad command line
	CategoryConfig     ErrorCategory = "config"     // unreadable or invalid config file
	CategoryNetwork    ErrorCategory = "network"
	CategoryGit        ErrorCategory = "git"
	CategoryModule     ErrorCategory = "module" // a build module's action failed
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryTest       ErrorCategory = "test" // site tests reported failures
	CategoryRuntime    ErrorCategory = "runtime"
	CategoryInternal   ErrorCategory = "internal"
)

var categoryExitCodes = map[ErrorCategory]int{
	CategoryValidation: ExitUsage,
	CategoryConfig:     ExitConfig,
	CategoryNetwork:    ExitExternal,
	CategoryGit:        ExitExternal,
	CategoryModule:     ExitBuild,
	CategoryFileSystem: ExitBuild,
	CategoryTest:       ExitTestFailed,
	CategoryRuntime:    ExitRuntime,
	CategoryInternal:   ExitInternal,
}

// ExitCode returns the process exit code for the category.
func (c ErrorCategory) ExitCode() int {
	if code, ok := categoryExitCodes[c]; ok {
		return code
	}
	return ExitFailure
}

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // stops the build
	SeverityError   ErrorSeverity = "error"   // fails the current module
	SeverityWarning ErrorSeverity = "warning" // logged, build continues
)

// Well-known context keys.
const (
	ContextModule = "module"
	ContextPath   = "path"
)

// ErrorContext carries structured fields logged with an error.
type ErrorContext map[string]any

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	str, ok := c[key].(string)
	return str, ok
}

// with returns a copy of c with key set.
func (c ErrorContext) with(key string, value any) ErrorContext {
	out := make(ErrorContext, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	out[key] = value
	return out
}
