package cmd

import (
	"github.com/warp-contracts/publisher/src/form"
	"github.com/warp-contracts/publisher/src/utils/logger"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(resumeCmd)
}

var resumeCmd = &cobra.Command{
	Use:   "resume <publication id>",
	Short: "Continues a failed publication from the last confirmed step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := startController()
		if err != nil {
			return
		}
		defer controller.StopWait()

		listing, err := controller.Publisher.ResumeByID(applicationCtx, controller.Identity(), args[0])
		if err != nil {
			return printOutcome(cmd, form.Failed(err))
		}

		return printOutcome(cmd, form.Succeeded(listing))
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		logger.NewSublogger("root-cmd").Debug("Finished resume command")
		return
	},
}
