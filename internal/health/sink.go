package health

// Sink consumes readings as they are produced.
type Sink interface {
	OnReading(Reading)
}

// ChannelSink forwards readings into a channel without blocking the
// receive path: when the consumer falls behind the reading is dropped.
type ChannelSink struct {
	Ch chan<- Reading
}

func (s ChannelSink) OnReading(r Reading) {
	if s.Ch == nil {
		return
	}
	select {
	case s.Ch <- r:
	default:
	}
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Reading)

func (f SinkFunc) OnReading(r Reading) { f(r) }
