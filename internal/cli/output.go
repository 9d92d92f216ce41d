package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
)

type printer struct {
	out  io.Writer
	json bool
}

func newPrinter(cmd *cobra.Command, opts *RootOptions) *printer {
	return &printer{out: cmd.OutOrStdout(), json: opts.Format == "json"}
}

func (p *printer) writeJSON(v interface{}) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) linef(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) pull(xeroID string, outcome dto.PullOutcome, record interface{}) error {
	if p.json {
		return p.writeJSON(map[string]interface{}{
			"xero_id": xeroID,
			"outcome": outcome,
			"record":  record,
		})
	}
	p.linef("%s: %s", xeroID, outcome)
	return nil
}
