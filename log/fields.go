package log

const (
	NamespaceKey = "futures"

	FutureIDKey = NamespaceKey + ".id"
	ErrorKey    = NamespaceKey + ".error"

	LockPathKey = NamespaceKey + ".lock.path"

	// DelayKey is the delay until the next retry of a polled acquisition
	DelayKey = NamespaceKey + ".retry.delay_ms"
)
