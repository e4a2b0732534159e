package envvar

const (
	// EnginehubEnv is the environment variable used to determine the environment
	EnginehubEnv = "ENGINEHUB_ENV"

	// EnginehubDriverConfig overrides the driver configuration document path
	EnginehubDriverConfig = "ENGINEHUB_DRIVER_CONFIG"

	// EnginehubGRPCAddress overrides the gRPC listen address
	EnginehubGRPCAddress = "ENGINEHUB_GRPC_ADDRESS"

	// EnginehubLogLevel overrides the log level
	EnginehubLogLevel = "ENGINEHUB_LOG_LEVEL"
)
