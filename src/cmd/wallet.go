package cmd

import (
	"context"
	"fmt"

	"github.com/warp-contracts/publisher/src/publish"
	"github.com/warp-contracts/publisher/src/utils/eth"

	"github.com/ethereum/go-ethereum/console/prompt"
)

// Asks for the keystore passphrase on the terminal
func promptPassphrase(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return prompt.Stdin.PromptPassword(fmt.Sprintf("Passphrase for %s: ", path))
}

// Starts the publisher without the REST API. Caller needs to stop it.
func startController() (controller *publish.Controller, err error) {
	conf.RESTListenAddress = ""

	controller, err = publish.NewController(conf, eth.NewWallet(&conf.Chain, promptPassphrase))
	if err != nil {
		return
	}

	err = controller.Start()
	return
}
