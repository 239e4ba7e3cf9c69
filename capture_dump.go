package logrich

// captureDump is the C8 use case: it snapshots the ring buffer (without
// flushing it, per the resolved open question) and renders it through the
// dump adapter.
func captureDump(ringBuffer *RingBuffer, adapter DumpPort, opts DumpOptions) (string, error) {
	events := ringBuffer.Snapshot()
	return adapter.Render(events, opts)
}
