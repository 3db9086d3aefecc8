package cmd

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pawel-madurski/PredictionIO/pkg/deployment"
	"github.com/pawel-madurski/PredictionIO/pkg/engine"
	"github.com/pawel-madurski/PredictionIO/pkg/env"
	"github.com/pawel-madurski/PredictionIO/pkg/event"
	"github.com/pawel-madurski/PredictionIO/pkg/http"
	"github.com/pawel-madurski/PredictionIO/pkg/modelstore"
	"github.com/pawel-madurski/PredictionIO/pkg/trace"
	"github.com/pawel-madurski/PredictionIO/pkg/trainer"
	"go.uber.org/zap"

	// plugin packages register their components on import
	_ "github.com/pawel-madurski/PredictionIO/pkg/algorithm/itemsim"
	_ "github.com/pawel-madurski/PredictionIO/pkg/algorithm/popular"
	_ "github.com/pawel-madurski/PredictionIO/pkg/datasource"
	_ "github.com/pawel-madurski/PredictionIO/pkg/datasource/file"
	_ "github.com/pawel-madurski/PredictionIO/pkg/preparator"
	_ "github.com/pawel-madurski/PredictionIO/pkg/serving"
	_ "github.com/pawel-madurski/PredictionIO/pkg/tools/log"
)

var rootCmd = &cobra.Command{
	Use:   "prediction",
	Short: "prediction serving runtime",
	Long:  "prediction serving runtime",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// buildEngine wires the engine configured at engineConfigPath
func buildEngine() *engine.Engine {
	cfg, err := engine.LoadConfig(viper.GetString(env.EngineConfigPath))
	if err != nil {
		zap.S().Fatalw("load engine config error", "err", err)
	}
	eng, err := engine.Build(cfg)
	if err != nil {
		zap.S().Fatalw("build engine error", "err", err)
	}
	return eng
}

func runServe() {
	if viper.GetBool(env.Trace) {
		trace.TraceInit()
	}
	eng := buildEngine()
	modelstore.StoreInit()
	trainer.ManagerInit(modelstore.GetStoreIns(), eng)
	deployment.ManagerInit(modelstore.GetStoreIns(), eng)
	if err := event.GetDeployHandlerIns().Start(); err != nil {
		zap.S().Fatalw("start deploy handler error", "err", err)
	}
	// an instance may already be deployed, pick it up before listening
	if err := deployment.GetManagerIns().Reload(); err != nil {
		zap.S().Warnw("initial reload error", "err", err)
	}
	r := gin.Default()
	http.RegisterRoute(r)
	if err := r.Run(":" + viper.GetString(env.Port)); err != nil {
		zap.S().Fatalw("gin run error", "err", err)
	}
}

func init() {
	viper.SetDefault(env.Port, "8000")
	viper.SetDefault(env.EngineConfigPath, "engine.json")
	viper.SetDefault(env.ModelStorePath, "models")
	viper.SetDefault(env.ModelStoreBackend, env.LocalBackend)
	viper.SetDefault(env.RedisIP, "127.0.0.1")
	viper.SetDefault(env.RedisPort, "6379")
	viper.SetDefault(env.RedisKeyPrefix, "prediction:")
	viper.SetDefault(env.QueryTimeout, time.Second)
	viper.SetDefault(env.ReloadInterval, 10*time.Second)
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().String("engine", "engine.json", "path of the engine wiring document")
	rootCmd.PersistentFlags().String("store", "models", "root path of the local model store")
	rootCmd.PersistentFlags().String("backend", env.LocalBackend, "model store backend, local or redis")
	rootCmd.PersistentFlags().String("port", "8000", "http port of the serving runtime")
	_ = viper.BindPFlag(env.EngineConfigPath, rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag(env.ModelStorePath, rootCmd.PersistentFlags().Lookup("store"))
	_ = viper.BindPFlag(env.ModelStoreBackend, rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag(env.Port, rootCmd.PersistentFlags().Lookup("port"))

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(statusCmd)
}
