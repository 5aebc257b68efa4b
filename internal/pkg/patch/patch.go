package patch

// Coalesce returns the value pointed to by ptr if it's not nil, otherwise returns fallback
func Coalesce[T any](ptr *T, fallback T) T {
	if ptr != nil {
		return *ptr
	}
	return fallback
}

// CoalescePtr is Coalesce for optional target fields: an override wins, otherwise the fallback pointer is kept.
func CoalescePtr[T any](override *T, fallback *T) *T {
	if override != nil {
		v := *override
		return &v
	}
	return fallback
}
