package cmd

import (
	"context"
	"fmt"

	"github.com/pawel-madurski/PredictionIO/pkg/modelstore"
	"github.com/pawel-madurski/PredictionIO/pkg/trainer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "run a new train and print the instance id",
	Long:  "run a new train and print the instance id",
	Run: func(cmd *cobra.Command, args []string) {
		eng := buildEngine()
		modelstore.StoreInit()
		trainer.ManagerInit(modelstore.GetStoreIns(), eng)
		id, err := trainer.GetManagerIns().Train(context.Background())
		if err != nil {
			zap.S().Fatalw("train error", "instance", id, "err", err)
		}
		fmt.Printf("Instance ID: %s\n", id)
	},
}
