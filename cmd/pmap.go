package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-apfs-resolve/internal/parsers/container"
	"github.com/deploymenttheory/go-apfs-resolve/internal/services"
)

var pmapBlock uint64

var pmapCmd = &cobra.Command{
	Use:   "pmap",
	Short: "Dump the entries of a physical-map block",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := requireDevice()
		if err != nil {
			return err
		}

		cr, err := services.NewContainerReader(path)
		if err != nil {
			return err
		}
		defer cr.Close()

		data, err := cr.ReadBlock(pmapBlock)
		if err != nil {
			return err
		}

		pm, err := container.NewPhysicalMapReader(data, cr.Endian())
		if err != nil {
			return err
		}

		log.Infow("physical map decoded", "block", pmapBlock, "entries", pm.Count(), "last", pm.IsLast())

		fmt.Printf("Flags:   0x%08x\n", pm.Flags())
		fmt.Printf("Entries: %d\n", pm.Count())
		for i, entry := range pm.Entries() {
			fmt.Printf("  [%3d] oid=%-12d paddr=%-12d type=0x%08x size=%d\n",
				i, entry.ObjectID(), entry.PhysicalAddress(), entry.Type(), entry.Size())
		}

		return nil
	},
}

func init() {
	pmapCmd.Flags().Uint64Var(&pmapBlock, "block", 0, "block number of the physical-map block")
	pmapCmd.MarkFlagRequired("block")
	rootCmd.AddCommand(pmapCmd)
}
