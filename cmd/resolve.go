package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-apfs-resolve/internal/parsers/container"
	"github.com/deploymenttheory/go-apfs-resolve/internal/services"
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

var (
	resolveOid       uint64
	resolveXid       uint64
	resolvePmapBlock uint64
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve an object identifier to a physical block address",
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

		omap, err := services.LoadObjectMap(cr, cr.Superblock().ObjectMapBlock(), cr.Endian())
		if err != nil {
			return err
		}

		resolver, err := services.NewObjectResolver(cr, omap, cr.Endian())
		if err != nil {
			return err
		}
		resolver.WithLogger(log)

		if resolvePmapBlock != 0 {
			data, err := cr.ReadBlock(resolvePmapBlock)
			if err != nil {
				return err
			}
			pm, err := container.NewPhysicalMapReader(data, cr.Endian())
			if err != nil {
				return err
			}
			resolver.WithPhysicalMap(pm)
		}

		xid := types.XidT(resolveXid)
		if xid == types.XidInvalid {
			xid = types.XidNewest
		}

		addr, err := resolver.Resolve(types.OidT(resolveOid), xid)
		if err != nil {
			return err
		}

		fmt.Printf("Object %d -> block %d (byte offset %d)\n",
			resolveOid, addr, int64(addr)*int64(cr.BlockSize()))
		return nil
	},
}

func init() {
	resolveCmd.Flags().Uint64Var(&resolveOid, "oid", 0, "object identifier to resolve")
	resolveCmd.Flags().Uint64Var(&resolveXid, "xid", 0, "transaction version (default: newest)")
	resolveCmd.Flags().Uint64Var(&resolvePmapBlock, "pmap-block", 0, "physical-map block to consult as fast path")
	resolveCmd.MarkFlagRequired("oid")
	rootCmd.AddCommand(resolveCmd)
}
