package cmd

import (
	"fmt"

	"github.com/warp-contracts/publisher/src/utils/eth"
	"github.com/warp-contracts/publisher/src/utils/logger"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(connectCmd)
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connects the wallet and shows the signer's balance",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		session := eth.NewSession(&conf.Chain).
			WithWallet(eth.NewWallet(&conf.Chain, promptPassphrase))
		defer session.Disconnect()

		identity, err := session.Connect(applicationCtx)
		if err != nil {
			return
		}

		balance, err := session.Balance(applicationCtx, identity)
		if err != nil {
			return
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "address:  %s\n", identity.Address.Hex())
		fmt.Fprintf(out, "chain id: %s\n", identity.ChainID)
		fmt.Fprintf(out, "balance:  %s ETH\n", balance)
		if session.IsBalanceLow(balance) {
			fmt.Fprintf(out, "warning:  balance is below %s ETH, transactions may fail\n", conf.Chain.LowBalanceWarning)
		}
		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		logger.NewSublogger("root-cmd").Debug("Finished connect command")
		return
	},
}
