package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/langpatch/pkg/archive"
	"github.com/matzehuels/langpatch/pkg/langs"
)

// inspection is the JSON form of one inspected archive.
type inspection struct {
	Archive     string    `json:"archive"`
	Format      string    `json:"format,omitempty"`
	Compression string    `json:"compression,omitempty"`
	Members     []string  `json:"members,omitempty"`
	Languages   langs.Set `json:"languages"`
	Error       string    `json:"error,omitempty"`
}

// inspectCommand creates the inspect command that lists archive members.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		quiet  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <archive>...",
		Short: "List archive members and detected languages",
		Long: `List archive members and detected languages.

Every member of a tar (raw or gzip/bzip2/xz/zstd compressed) or zip archive
is printed as archive:member, followed by the compiled languages the member
names indicate. Truncated archives are listed as far as they can be read.
Files that are not archives are reported and skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]inspection, 0, len(args))
			for _, path := range args {
				results = append(results, inspectArchive(path))
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			for _, r := range results {
				printInspection(out, r, quiet)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "languages-only", "l", false, "print only the detected languages")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")

	return cmd
}

// inspectArchive lists path's members. Errors are recorded, not returned.
func inspectArchive(path string) inspection {
	r := inspection{Archive: path}
	ctr, err := archive.InspectFile(path)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Format = ctr.Format.String()
	r.Compression = ctr.Compression.String()
	for m := range ctr.Members() {
		r.Members = append(r.Members, m)
	}
	r.Languages = langs.Classify(slices.Values(r.Members))
	return r
}

func printInspection(w io.Writer, r inspection, quiet bool) {
	if r.Error != "" {
		printWarning(w, "%s: %s", r.Archive, r.Error)
		return
	}
	if !quiet {
		for _, m := range r.Members {
			fmt.Fprintf(w, "%s:%s\n", r.Archive, m)
		}
	}
	desc := fmt.Sprintf("%s, %d members", r.Format, len(r.Members))
	if r.Compression != "" && r.Compression != "none" {
		desc = fmt.Sprintf("%s+%s, %d members", r.Format, r.Compression, len(r.Members))
	}
	if r.Languages.Empty() {
		printInfo(w, "%s: no compiled languages (%s)", r.Archive, desc)
		return
	}
	printSuccess(w, "%s: %s (%s)", r.Archive, r.Languages, desc)
}
