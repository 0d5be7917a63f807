// internal/dispatch/config.go
package dispatch

type Config struct {
	GateScore int
	Templates Templates
}
