// Package match defines the candidate shape returned by remote provider
// backends.
package match

// Match is one provider-returned candidate: an identifier, the provider's
// relevance score, and an optional snippet of the matched text.
type Match struct {
	ID      string
	Score   float64
	Snippet string
}
