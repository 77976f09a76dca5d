package source

// Source tags where a result's score came from.
type Source string

// Score origin constants.
const (
	// Provider means the score came from the remote provider unblended.
	Provider Source = "provider"
	// Local means the score came from the local index only.
	Local Source = "local"
	// Blended means provider and local scores were combined.
	Blended Source = "blended"
)

// IsValid checks if the source is one of the supported values.
func (s Source) IsValid() bool {
	return s == Provider || s == Local || s == Blended
}
