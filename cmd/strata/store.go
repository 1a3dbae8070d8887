package strata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strata-dev/strata/internal/reconcile"
	"github.com/strata-dev/strata/internal/render"
	"github.com/strata-dev/strata/internal/types"
)

var (
	flagStoreFile string
	flagStoreRoot string
)

func init() {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and maintain the persisted decision store",
	}
	rootCmd.AddCommand(storeCmd)

	storeCmd.PersistentFlags().StringVar(&flagStoreFile, "store", "", "decision store path (default <root>/.strata/decision-store.yaml)")
	storeCmd.PersistentFlags().StringVarP(&flagStoreRoot, "path", "p", ".", "analyzed repository root")

	storeCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the persisted decisions",
		RunE:  runStoreShow,
	})
	storeCmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Drop decisions whose evidence files no longer exist",
		RunE:  runStorePrune,
	})
}

func storePath() (string, string, error) {
	root, err := filepath.Abs(flagStoreRoot)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", types.ErrInput, err)
	}
	p := flagStoreFile
	if p == "" {
		p = filepath.Join(root, ".strata", "decision-store.yaml")
	}
	return p, root, nil
}

func runStoreShow(_ *cobra.Command, _ []string) error {
	path, _, err := storePath()
	if err != nil {
		return err
	}
	store, err := reconcile.Load(path)
	if err != nil {
		return err
	}
	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(store.Decisions)
	}
	render.WriteDecisionTable(os.Stdout, store.Decisions)
	fmt.Printf("%d decisions (fingerprint %s, updated %s)\n",
		len(store.Decisions), store.Fingerprint(), store.UpdatedAt.Format("2006-01-02 15:04"))
	return nil
}

// runStorePrune drops decisions none of whose evidence files still exist
// under the repository root. Partial staleness keeps the decision; prune only
// removes records with zero surviving evidence.
func runStorePrune(_ *cobra.Command, _ []string) error {
	path, root, err := storePath()
	if err != nil {
		return err
	}
	store, err := reconcile.Load(path)
	if err != nil {
		return err
	}

	var kept []types.DecisionRecord
	pruned := 0
	for _, d := range store.Decisions {
		if anyEvidenceExists(root, d.EvidenceRefs) {
			kept = append(kept, d)
			continue
		}
		pruned++
		fmt.Printf("pruning %s: no evidence files remain\n", d.Key())
	}
	if pruned == 0 {
		fmt.Println("nothing to prune")
		return nil
	}
	store.Decisions = kept
	if err := reconcile.Save(path, store); err != nil {
		return err
	}
	fmt.Printf("pruned %d decision(s), %d remain\n", pruned, len(kept))
	return nil
}

func anyEvidenceExists(root string, refs []string) bool {
	for _, ref := range refs {
		p := ref
		if i := strings.LastIndex(p, "#"); i >= 0 {
			p = p[:i]
		}
		if _, err := os.Stat(filepath.Join(root, p)); err == nil {
			return true
		}
	}
	return false
}
