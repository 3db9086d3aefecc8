package trace

import (
	"net/http"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pawel-madurski/PredictionIO/pkg/env"
	"github.com/spf13/viper"
	"github.com/uber/jaeger-client-go"
	tracer_config "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"
)

func TraceInit() {
	cfg := &tracer_config.Configuration{}
	cfg.Sampler = &tracer_config.SamplerConfig{
		Type:  jaeger.SamplerTypeConst,
		Param: 1.0,
	}
	zap.S().Infow("use jaeger agent host and port", "HostAndPort", viper.GetString(env.TraceAgentHostPort))
	cfg.Reporter = &tracer_config.ReporterConfig{
		QueueSize:           100,
		BufferFlushInterval: 1 * time.Millisecond,
		LogSpans:            false,
		LocalAgentHostPort:  viper.GetString(env.TraceAgentHostPort),
	}

	// closer ignored here, the tracer lives until the process dies
	_, err := cfg.InitGlobalTracer("prediction")
	if err != nil {
		panic(err)
	}
}

func GetSpanContextFromHeaders(header http.Header) (opentracing.SpanContext, error) {
	carrier := opentracing.HTTPHeadersCarrier(header)
	return opentracing.GlobalTracer().Extract(opentracing.HTTPHeaders, carrier)
}
