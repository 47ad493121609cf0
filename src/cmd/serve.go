package cmd

import (
	"github.com/warp-contracts/publisher/src/form"
	"github.com/warp-contracts/publisher/src/publish"
	"github.com/warp-contracts/publisher/src/utils/eth"
	"github.com/warp-contracts/publisher/src/utils/logger"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accepts publications over the REST API",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := publish.NewController(conf, eth.NewWallet(&conf.Chain, promptPassphrase))
		if err != nil {
			return
		}

		if controller.Server != nil {
			handler := form.NewHandler(conf, controller.Publisher, controller.Store, controller.Identity)
			controller.Server.WithRoutes(handler.Register)
		}

		err = controller.Start()
		if err != nil {
			return
		}

		select {
		case <-controller.CtxRunning.Done():
		case <-applicationCtx.Done():
		}

		controller.StopWait()

		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		logger.NewSublogger("root-cmd").Debug("Finished serve command")
		return
	},
}
