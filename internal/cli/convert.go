package cli

import (
	"github.com/spf13/cobra"
)

// ConvertResult is the JSON payload of the convert command.
type ConvertResult struct {
	Sets []SetView `json:"sets"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ModelOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <model.yaml>",
		Short: "Convert a model into versioned sets",
		Long: `Walk the object graph of a model and group its versioned objects into
sets. Each set is listed with its member count and the sets binding it.

Examples:
  versets convert --types ./types model.yaml
  versets convert --types ./types model.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func runConvert(opts *ModelOptions, modelPath string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	sets, err := s.convert(modelPath)
	if err != nil {
		return err
	}

	views := newSetViews(s.reg, sets)
	if s.out.JSON() {
		return s.out.Success(ConvertResult{Sets: views})
	}
	for _, v := range views {
		s.out.Printf("%s\n", v)
	}
	return nil
}
