package eventbus

import "github.com/rs/zerolog"

// AttachDebugLogger traces all bus traffic at debug level. Wired when the
// log level is debug so event flow can be followed in the log file.
func AttachDebugLogger(bus *EventBus, log zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		log.Debug().Str("event", string(event)).Type("payload", payload).Msg("event published")
	})
	bus.OnPanic(func(event Event, _ any, recovered any) {
		log.Debug().Str("event", string(event)).Interface("panic", recovered).Msg("handler panic recovered")
	})
}
