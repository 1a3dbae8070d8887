package strata

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/strata-dev/strata/internal/signature"
	"github.com/strata-dev/strata/internal/types"
)

var flagSigExtensions []string

func init() {
	cmd := &cobra.Command{
		Use:   "signatures",
		Short: "List the technology signature registry",
		RunE:  runSignatures,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringSliceVar(&flagSigExtensions, "signatures", nil, "extra signature registry files (YAML)")
}

func runSignatures(_ *cobra.Command, _ []string) error {
	reg, err := signature.Load(flagSigExtensions)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInput, err)
	}

	if flagJSON {
		type sigInfo struct {
			ID              string         `json:"id"`
			Category        types.Category `json:"category"`
			FilePatterns    []string       `json:"file_patterns"`
			ContentPatterns []string       `json:"content_patterns,omitempty"`
		}
		out := make([]sigInfo, 0, reg.Len())
		for _, s := range reg.Signatures() {
			out = append(out, sigInfo{
				ID:              s.ID,
				Category:        s.Category,
				FilePatterns:    s.FilePatterns,
				ContentPatterns: s.ContentPatterns,
			})
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header("ID", "Category", "File patterns", "Content patterns")
	for _, s := range reg.Signatures() {
		table.Append(s.ID, string(s.Category),
			strings.Join(s.FilePatterns, " "),
			fmt.Sprintf("%d", len(s.ContentPatterns)))
	}
	table.Render()
	fmt.Printf("%d signatures (fingerprint %s)\n", reg.Len(), reg.Fingerprint())
	return nil
}
