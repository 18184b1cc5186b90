package api

// Error mapping is done inline in handlers.
// Generation faults are reply envelopes with status "failed", not errors.
// Missing or malformed envelopes map to INVALID_ARGUMENT.
// Reply encoding failures map to INTERNAL.
// Panics and timeouts are mapped by the server interceptors.
