package event

import (
	"github.com/pawel-madurski/PredictionIO/pkg/tools/register"
	"go.uber.org/zap"
)

// Handler consumes events delivered from other modules
type Handler interface {
	AddEvent(e interface{})
	Start() error
}

// DeployEvent signals that the current instance pointer moved,
// the serving runtime should reload without waiting for its poller
type DeployEvent struct {
	InstanceID string
}

var dh *DeployHandler

func init() {
	dh = &DeployHandler{
		upstream: make(chan DeployEvent, 16),
	}
}

// DeployHandler forwards deploy events to the deployment manager's reload.
// The manager registers its trigger through tools/register, a direct import
// here would close an import cycle.
type DeployHandler struct {
	upstream chan DeployEvent
}

func GetDeployHandlerIns() Handler {
	return dh
}

func (dh *DeployHandler) AddEvent(e interface{}) {
	de, ok := e.(DeployEvent)
	if !ok {
		zap.S().Errorw("deploy handler add event convert error", "event", e)
		return
	}
	go func(de DeployEvent) {
		dh.upstream <- de
	}(de)
}

func (dh *DeployHandler) Start() error {
	go func() {
		for e := range dh.upstream {
			zap.S().Infow("deploy event received", "instance", e.InstanceID)
			if register.TriggerReload == nil {
				zap.S().Warnw("no reload trigger registered, deploy event dropped",
					"instance", e.InstanceID)
				continue
			}
			if err := register.TriggerReload(); err != nil {
				zap.S().Errorw("reload after deploy error", "err", err)
			}
		}
	}()
	return nil
}
