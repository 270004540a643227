package service

// SendLatest puts v on ch, first discarding whatever is still buffered.
// ch must be buffered and have a single sender (or senders serialized by
// the caller), so readers only ever observe the most recent value.
func SendLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
