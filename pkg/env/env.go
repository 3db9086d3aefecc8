package env

// FIXME: unify the naming rule of env vars
const (
	Port               = "port"
	EngineConfigPath   = "engineConfigPath"
	ModelStorePath     = "modelStorePath"
	ModelStoreBackend  = "modelStoreBackend"
	RedisIP            = "RedisIp"
	RedisPort          = "RedisPort"
	RedisPassword      = "RedisPassword"
	DefaultDb          = "DefaultDb"
	RedisKeyPrefix     = "RedisKeyPrefix"
	QueryTimeout       = "queryTimeout"
	ReloadInterval     = "reloadInterval"
	Trace              = "trace"
	TraceAgentHostPort = "TraceAgentHostPort"
	LocalBackend       = "local"
	RedisBackend       = "redis"
)
