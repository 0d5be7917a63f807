// internal/uploader/config.go
package uploader

import "time"

type Config struct {
	TenderURL  string
	CVsURL     string
	MaxCVBatch int
	Timeout    time.Duration
}
