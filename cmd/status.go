package cmd

import (
	"fmt"
	"strings"

	"github.com/pawel-madurski/PredictionIO/pkg/modelstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "list instances and the current pointer",
	Long:  "list instances and the current pointer",
	Run: func(cmd *cobra.Command, args []string) {
		modelstore.StoreInit()
		instances, err := modelstore.GetStoreIns().ListInstances()
		if err != nil {
			zap.S().Fatalw("list instances error", "err", err)
		}
		current, err := modelstore.GetStoreIns().GetCurrent()
		if err != nil {
			zap.S().Fatalw("get current error", "err", err)
		}
		for _, instance := range instances {
			marker := " "
			if instance.ID == current {
				marker = "*"
			}
			fmt.Printf("%s %s\t%s\t%s\t%s\n", marker, instance.ID, instance.Status,
				strings.Join(instance.Algorithms, ","), instance.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		if current == "" {
			fmt.Println("no instance deployed")
		}
	},
}
