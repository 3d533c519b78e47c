package main

import (
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var nodeID int64

var rootCmd = &cobra.Command{
	Use:          "ledgerly",
	Short:        "Voucher accounting engine",
	Long:         `ledgerly records payment, receipt, sales and purchase vouchers as balanced double-entry postings.`,
	Version:      version,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ledgerly: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&nodeID, "node-id", 1, "snowflake node id of this instance (0-1023)")
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(nodeID)
}
