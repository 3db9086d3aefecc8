package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pawel-madurski/PredictionIO/pkg/deployment"
	"github.com/pawel-madurski/PredictionIO/pkg/dto"
	"github.com/pawel-madurski/PredictionIO/pkg/engine"
	"github.com/pawel-madurski/PredictionIO/pkg/event"
	"github.com/pawel-madurski/PredictionIO/pkg/modelstore"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/errorutils"
	"github.com/pawel-madurski/PredictionIO/pkg/trace"
	"github.com/pawel-madurski/PredictionIO/pkg/trainer"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

// Query is called for every incoming prediction request
func Query(c *gin.Context) {
	var request dto.QueryRequest

	// 1. mapping into JSON format
	if err := c.BindJSON(&request); err != nil {
		zap.S().Errorw("query bind json error", "err", err)
		c.JSON(400, dto.QueryResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}
	rid := xid.New().String()

	// 2. record opentracing span, joining the caller's trace when it sent one
	var sp opentracing.Span
	spanContext, err := trace.GetSpanContextFromHeaders(c.Request.Header)
	if err == nil {
		sp = opentracing.GlobalTracer().StartSpan("query", opentracing.ChildOf(spanContext))
	} else {
		if err != opentracing.ErrSpanContextNotFound {
			zap.S().Debugw("trace get spanContext error", "err", err)
		}
		sp = opentracing.GlobalTracer().StartSpan("query")
	}
	defer sp.Finish()

	// 3. answer against the loaded snapshot
	result, err := deployment.GetManagerIns().Query(c.Request.Context(), engine.Query{
		User: request.User,
		Num:  request.Num,
	})
	if err != nil {
		if _, ok := err.(*errorutils.NoPredictionAvailableError); ok {
			zap.S().Infow("no prediction available", "rid", rid, "user", request.User)
			c.JSON(404, dto.QueryResponse{
				Success: false,
				Message: err.Error(),
			})
			return
		}
		zap.S().Errorw("query error", "rid", rid, "err", err)
		c.JSON(500, dto.QueryResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}
	c.JSON(200, dto.QueryResponse{
		Success:    true,
		Algorithm:  result.Algorithm,
		ItemScores: result.ItemScores,
	})
}

// Train triggers a new train run and blocks until it finished.
// The instance id is returned either way so the operator can inspect a
// failed run on the status surface.
func Train(c *gin.Context) {
	id, err := trainer.GetManagerIns().Train(c.Request.Context())
	if err != nil {
		zap.S().Errorw("train error", "instance", id, "err", err)
		c.JSON(500, dto.TrainResponse{
			Success:    false,
			Message:    err.Error(),
			InstanceID: id,
		})
		return
	}
	c.JSON(200, dto.TrainResponse{
		Success:    true,
		InstanceID: id,
	})
}

// Deploy repoints the current instance marker and wakes up the reload
func Deploy(c *gin.Context) {
	var request dto.DeployRequest
	if err := c.BindJSON(&request); err != nil {
		zap.S().Errorw("deploy bind json error", "err", err)
		c.JSON(400, dto.DeployResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}
	if err := modelstore.GetStoreIns().SetCurrent(request.InstanceID); err != nil {
		code := 500
		if _, ok := err.(*errorutils.DeployInconsistencyError); ok {
			code = 409
		} else if err == modelstore.ErrInstanceNotFound {
			code = 404
		}
		c.JSON(code, dto.DeployResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}
	event.GetDeployHandlerIns().AddEvent(event.DeployEvent{InstanceID: request.InstanceID})
	c.JSON(200, dto.DeployResponse{
		Success:    true,
		InstanceID: request.InstanceID,
	})
}

// Status reports every persisted instance, the current pointer and the
// instance the serving runtime actually has loaded
func Status(c *gin.Context) {
	instances, err := modelstore.GetStoreIns().ListInstances()
	if err != nil {
		c.JSON(500, dto.StatusResponse{Success: false, Message: err.Error()})
		return
	}
	current, err := modelstore.GetStoreIns().GetCurrent()
	if err != nil {
		c.JSON(500, dto.StatusResponse{Success: false, Message: err.Error()})
		return
	}
	infos := make([]dto.InstanceInfo, 0, len(instances))
	for _, instance := range instances {
		infos = append(infos, dto.InstanceInfo{
			ID:         instance.ID,
			Status:     string(instance.Status),
			Algorithms: instance.Algorithms,
			CreatedAt:  instance.CreatedAt.String(),
		})
	}
	c.JSON(200, dto.StatusResponse{
		Success:   true,
		Current:   current,
		Loaded:    deployment.GetManagerIns().CurrentInstanceID(),
		Instances: infos,
	})
}
