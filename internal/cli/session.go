package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/versets/internal/convert"
	"github.com/roach88/versets/internal/descriptor"
	"github.com/roach88/versets/internal/vset"
)

// ModelOptions holds the flags shared by commands that read models.
type ModelOptions struct {
	*RootOptions
	TypesDir      string
	SequentialIDs bool // deterministic set UUIDs
}

func (o *ModelOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.TypesDir, "types", "t", "", "directory of CUE type declarations (required)")
	cmd.Flags().BoolVar(&o.SequentialIDs, "sequential-ids", false, "assign sequential set UUIDs instead of UUIDv7")
	_ = cmd.MarkFlagRequired("types")
}

// session is the per-invocation engine context of a command.
type session struct {
	reg    *descriptor.Registry
	ids    vset.IDGenerator
	logger *slog.Logger
	out    *OutputFormatter
}

// openSession loads the type declarations of a command. One ID generator
// serves the whole invocation, so sets of different models never share
// UUIDs.
func openSession(opts *ModelOptions, cmd *cobra.Command) (*session, error) {
	s := &session{
		logger: newLogger(opts.RootOptions, cmd.ErrOrStderr()),
		out:    newFormatter(opts.RootOptions, cmd),
		ids:    vset.UUIDv7Generator{},
	}
	if opts.SequentialIDs {
		s.ids = vset.NewSequentialGenerator()
	}

	s.out.VerboseLog("Loading declarations from: %s", opts.TypesDir)
	loaded, err := LoadTypes(opts.TypesDir, s.logger)
	if err != nil {
		return nil, fail(s.out, ExitCommandError, err)
	}
	s.out.VerboseLog("Declared %d type(s)", len(loaded.Types))
	s.reg = loaded.Registry
	return s, nil
}

// roots builds the object graph of a model file.
func (s *session) roots(path string) ([]descriptor.Object, error) {
	s.out.VerboseLog("Loading model: %s", path)
	g, err := LoadModel(s.reg, path)
	if err != nil {
		return nil, fail(s.out, ExitCommandError, err)
	}
	return g.Roots, nil
}

// convert converts a model file into sets.
func (s *session) convert(path string) ([]*vset.Set, error) {
	roots, err := s.roots(path)
	if err != nil {
		return nil, err
	}
	sets, err := convert.NewConverter(s.reg,
		convert.WithIDGenerator(s.ids),
		convert.WithLogger(s.logger),
	).Convert(roots...)
	if err != nil {
		return nil, s.engineError(err)
	}
	return sets, nil
}

// engineError reports a failure of the versioning engine itself.
func (s *session) engineError(err error) error {
	_ = s.out.Error(ErrCodeEngineFailed, err.Error(), nil)
	return WrapExitError(ExitFailure, ErrCodeEngineFailed, err)
}
