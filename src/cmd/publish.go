package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/warp-contracts/publisher/src/form"
	"github.com/warp-contracts/publisher/src/utils/ipfs"
	"github.com/warp-contracts/publisher/src/utils/logger"

	"github.com/spf13/cobra"
)

var publishFlags struct {
	image       string
	imageRef    string
	name        string
	description string
	price       string
}

func init() {
	publishCmd.Flags().StringVar(&publishFlags.image, "image", "", "path to the image file, uploaded to IPFS")
	publishCmd.Flags().StringVar(&publishFlags.imageRef, "image-ref", "", "identifier or gateway URI of an already uploaded image")
	publishCmd.Flags().StringVar(&publishFlags.name, "name", "", "name of the asset")
	publishCmd.Flags().StringVar(&publishFlags.description, "description", "", "description of the asset")
	publishCmd.Flags().StringVar(&publishFlags.price, "price", "", "listing price in ETH")
	publishCmd.MarkFlagsMutuallyExclusive("image", "image-ref")

	RootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Uploads metadata, mints the NFT and lists it on the marketplace",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := startController()
		if err != nil {
			return
		}
		defer controller.StopWait()

		f := form.NewForm(controller.Publisher, controller.Store).
			WithIdentity(controller.Identity()).
			WithMaxImageSize(conf.Publisher.MaxImageSize)

		f.SetName(publishFlags.name)
		f.SetDescription(publishFlags.description)
		err = f.SetPrice(publishFlags.price)
		if err != nil {
			return fmt.Errorf("%s", form.Message(err))
		}

		err = f.ValidateDetails()
		if err != nil {
			return fmt.Errorf("%s", form.Message(err))
		}

		if publishFlags.image != "" {
			var file *os.File
			file, err = os.Open(publishFlags.image)
			if err != nil {
				return
			}
			defer file.Close()

			_, err = f.AttachImage(applicationCtx, filepath.Base(publishFlags.image), file)
			if err != nil {
				return fmt.Errorf("%s", form.Message(err))
			}
		} else {
			f.SetImageRef(ipfs.ContentID(publishFlags.imageRef))
		}

		return printOutcome(cmd, f.Submit(applicationCtx))
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		logger.NewSublogger("root-cmd").Debug("Finished publish command")
		return
	},
}

func printOutcome(cmd *cobra.Command, outcome form.Outcome) error {
	if !outcome.Success() {
		return fmt.Errorf("%s", outcome.Message)
	}

	listing := outcome.Listing
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, outcome.Message)
	fmt.Fprintf(out, "id:       %s\n", listing.PublicationID)
	fmt.Fprintf(out, "token:    %s #%s\n", listing.NFTContract.Hex(), listing.TokenID)
	fmt.Fprintf(out, "price:    %s ETH\n", listing.Price)
	fmt.Fprintf(out, "metadata: %s\n", listing.MetadataURI)
	if listing.ItemID != nil {
		fmt.Fprintf(out, "item:     %s\n", listing.ItemID)
	}
	for stage, hash := range listing.TxHashes {
		fmt.Fprintf(out, "tx %-7s %s\n", stage, hash.Hex())
	}
	return nil
}
