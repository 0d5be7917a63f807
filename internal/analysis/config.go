// internal/analysis/config.go
package analysis

import "time"

type Config struct {
	AnalyzeURL string
	Timeout    time.Duration
}
