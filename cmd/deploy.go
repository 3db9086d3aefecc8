package cmd

import (
	"fmt"

	"github.com/pawel-madurski/PredictionIO/pkg/modelstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var deployInstance string

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "make a trained instance the current one",
	Long:  "make a trained instance the current one, a running serving runtime picks it up on its next poll",
	Run: func(cmd *cobra.Command, args []string) {
		if deployInstance == "" {
			zap.S().Fatal("--instance is required")
		}
		modelstore.StoreInit()
		if err := modelstore.GetStoreIns().SetCurrent(deployInstance); err != nil {
			zap.S().Fatalw("deploy error", "instance", deployInstance, "err", err)
		}
		fmt.Printf("Instance ID: %s deployed\n", deployInstance)
	},
}

func init() {
	deployCmd.Flags().StringVar(&deployInstance, "instance", "", "instance id to deploy")
}
