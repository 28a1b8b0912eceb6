package interfaces

// DeletionBlockedError reports a delete refused because other records still
// reference the target, e.g. a screen with approval records attached.
type DeletionBlockedError struct {
	Resource   string
	References map[string]int64
}

func (e *DeletionBlockedError) Error() string {
	return e.Resource + " deletion blocked by existing references"
}
