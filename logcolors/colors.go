package logcolors

// ANSI color codes for log prefixes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"

	// Bright variants for more color variety
	BrightGreen   = "\033[92m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"

	Red       = "\033[31m"
	BrightRed = "\033[91m"
)

// Cache-related log prefixes
const (
	LogCacheInit   = Blue + "[Cache:Init]" + Reset
	LogCache       = Blue + "[Cache]" + Reset
	LogCacheClear  = Blue + "[Cache:Clear]" + Reset
	LogCacheLyrics = Green + "[Cache:Lyrics]" + Reset
)

// Rate limiting and auth log prefixes
const (
	LogRateLimit = Purple + "[RateLimit]" + Reset
	LogAuth      = Purple + "[Auth]" + Reset
)

// CircuitBreakerPrefix returns a colored circuit breaker prefix with the given name
func CircuitBreakerPrefix(name string) string {
	return Purple + "[CircuitBreaker:" + name + "]" + Reset
}

// providerColors rotate across provider names
var providerColors = []string{
	Green, Blue, Purple, Cyan, Red,
	BrightGreen, BrightBlue, BrightMagenta, BrightCyan, BrightRed,
}

// Provider returns a colored "[Provider:name]" prefix.
// Same provider name always gets the same color
func Provider(name string) string {
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	color := providerColors[hash%len(providerColors)]
	return color + "[Provider:" + name + "]" + Reset
}

// Server/Init log prefixes
const (
	LogServer = Green + "[Server]" + Reset
	LogConfig = Cyan + "[Config]" + Reset
	LogStats  = Blue + "[Stats]" + Reset
)

// Sync and timeline log prefixes
const (
	LogSync     = BrightCyan + "[Sync]" + Reset
	LogTimeline = BrightBlue + "[Timeline]" + Reset
	LogRoute    = Cyan + "[Route]" + Reset
)

// Provider service log prefixes
const (
	LogRequest    = Purple + "[Request]" + Reset
	LogSearch     = Blue + "[Search]" + Reset
	LogHTTP       = Cyan + "[HTTP]" + Reset
	LogMatch      = Green + "[Match]" + Reset
	LogSuccess    = Green + "[Success]" + Reset
	LogLyrics     = Blue + "[Lyrics]" + Reset
	LogFallback   = Cyan + "[Fallback]" + Reset
	LogBestMatch  = Green + "[Best Match]" + Reset
	LogExactMatch = BrightGreen + "[Exact Match]" + Reset
	LogWarning    = Red + "[Warning]" + Reset
)

// Health check log prefixes
const (
	LogHealthCheck = Cyan + "[Health Check]" + Reset
)
