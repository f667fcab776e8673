package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/token"

	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/fixture"
	"github.com/roach88/versets/internal/store"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeDeclareFailed = "E006" // Declarations rejected by the registry
	ErrCodeModelInvalid  = "E007" // Model fixture could not be parsed or built
	ErrCodeStoreFailed   = "E008" // Document store could not be opened or read
	ErrCodeConflict      = "E009" // Concurrent update conflict
	ErrCodeEngineFailed  = "E010" // Convert, compare, commit or merge failed
)

// LoadError represents an error that occurred while loading CLI inputs.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadResult is a registry built from a declarations directory.
type LoadResult struct {
	Registry  *descriptor.Registry
	Types     []string
	FileCount int
}

// LoadTypes compiles the CUE declarations of a directory into a registry.
// A nil logger means slog.Default().
func LoadTypes(dir string, logger *slog.Logger) (*LoadResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("declarations directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: err.Error()}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: err.Error()}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	decls, err := descriptor.LoadDeclarations(dir)
	if err != nil {
		return nil, wrapLoadError(ErrCodeLoadFailed, err)
	}

	reg := descriptor.NewRegistry(descriptor.WithLogger(logger))
	if err := reg.Declare(decls...); err != nil {
		return nil, wrapLoadError(ErrCodeDeclareFailed, err)
	}
	return &LoadResult{Registry: reg, Types: reg.Types(), FileCount: len(files)}, nil
}

// wrapLoadError keeps the CUE position of declaration errors.
func wrapLoadError(code string, err error) *LoadError {
	var declErr *descriptor.DeclarationError
	if errors.As(err, &declErr) {
		return &LoadError{
			Code:    code,
			Message: declErr.Field + ": " + declErr.Message,
			Pos:     declErr.Pos,
		}
	}
	return &LoadError{Code: code, Message: err.Error()}
}

// LoadModel reads a YAML model fixture and builds its object graph.
func LoadModel(reg *descriptor.Registry, path string) (*fixture.Graph, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("model file not found: %s", path)}
	}
	m, err := fixture.Load(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeModelInvalid, Message: err.Error()}
	}
	g, err := m.Build(reg)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeModelInvalid, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	return g, nil
}

// openStore opens the document database, creating it if needed.
func openStore(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()}
	}
	return st, nil
}

// loadErrorCode returns the code of a LoadError, or the generic code.
func loadErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeGeneric
}

// fail reports err through the formatter and returns an ExitError.
// Input problems are command errors; everything else fails the command.
func fail(f *OutputFormatter, exitCode int, err error) error {
	code := loadErrorCode(err)
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(exitCode, code, err)
}
