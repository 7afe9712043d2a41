package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-apfs-resolve/internal/services"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show container superblock fields",
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

		sb := cr.Superblock()
		log.Infow("container superblock decoded", "device", path)

		fmt.Printf("Magic:               0x%08x\n", sb.Magic())
		fmt.Printf("UUID:                %s\n", sb.UUID())
		fmt.Printf("Block size:          %d\n", sb.BlockSize())
		fmt.Printf("Block count:         %d\n", sb.BlockCount())
		fmt.Printf("Space manager OID:   %d\n", sb.SpaceManagerOID())
		fmt.Printf("Object map block:    %d\n", sb.ObjectMapBlock())
		fmt.Printf("Reaper OID:          %d\n", sb.ReaperOID())
		fmt.Printf("Next object ID:      %d\n", sb.NextObjectID())
		fmt.Printf("Next transaction ID: %d\n", sb.NextTransactionID())

		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
