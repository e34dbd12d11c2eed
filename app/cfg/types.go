package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	ConfigFile        string
	Universe          string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	UniverseInterval  int
	BatchSize         int
	Sequential        bool
	ExtractContent    bool
	APIAccessKey      string

	// Sentiment model configuration
	SentimentURL   string
	SentimentToken string

	// Application metadata
	UserAgent      string
	RequestTimeout int
	Timezone       string
	Debug          bool
	Version        string
}
