package config

type InternalConfig struct {
	App      App
	Screener AppScreener
	Session  AppSession
	Routing  AppRouting
	Webhook  AppWebhook
}

type App struct {
	Env                        string
	Port                       string
	Version                    string
	Address                    string
	EndpointPrefix             string
	CORSAllowedOrigins         []string
	MaxRequests                int
	MaxTimeRequestsPerSeconds  int
	SubmitRequestsPerSecond    float64
	SubmitBurst                int
	ShutdownTimeoutInSeconds   int
	RequestTimeoutInSeconds    int
	RequestBodyLimitInMegabyte int
}

// AppScreener selects where screener definitions and the rule table come from.
type AppScreener struct {
	// Source is one of file, minio or mongo.
	Source string
	// Directory holds <screenerType>.json files for the file source.
	Directory string
	// Watch reloads file screeners when they change on disk.
	Watch bool
	// RuleTablePath overrides the embedded rule table when set.
	RuleTablePath    string
	MinioBucketName  string
	MinioPrefix      string
	MongoCollection  string
	CacheTTLInMinute int
}

type AppSession struct {
	// Store is one of redis or memory.
	Store                 string
	ExpiredTimeInMinutes  int
	LockExpiredTimeInSecs int
	// CreateQuota caps new sessions per client address and window, shared
	// by every instance on the same store. Zero disables it.
	CreateQuota           int
	CreateWindowInSeconds int
}

type AppRouting struct {
	RootDomain      string
	NotEligiblePath string
	FallbackPath    string
	// CategoryPaths overrides fee page paths, e.g. weightloss=glp1fee.
	CategoryPaths map[string]string
}

// AppWebhook configures delivery of submissions to the collector.
type AppWebhook struct {
	URL string
	// Delivery is queue (RabbitMQ plus worker) or direct.
	Delivery string
	Queue    string
	// MaxQueue defines how many items the worker processes per tick
	MaxQueue int
	// ThrottleRetry is the failedCount threshold before sending to DLQ
	ThrottleRetry          int
	HTTPTimeoutInSeconds   int
	WorkerIntervalInSecond int
	// JWTAlg selects the signing algorithm (ES256|RS256)
	JWTAlg string
	// JWTHookKey is the private key PEM for signing collector JWTs
	JWTHookKey string
}
