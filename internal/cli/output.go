package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type output struct {
	format string
	w      io.Writer
}

func newOutput(opts *RootOptions, cmd *cobra.Command) output {
	return output{format: opts.Format, w: cmd.OutOrStdout()}
}

func (o output) json() bool { return o.format == "json" }

func (o output) writeJSON(v any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (o output) printf(format string, args ...any) {
	fmt.Fprintf(o.w, format, args...)
}
