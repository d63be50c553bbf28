package orm

// Model is implemented by any entity that can be stored using a Bucket.
type Model interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
	// Validate returns error if the model is not in a valid
	// state to save to the db (eg. field missing, out of range, ...)
	Validate() error
}

// Indexer calculates the secondary index value for a given model.
// Returning nil excludes the model from the index.
type Indexer func(key []byte, m Model) ([]byte, error)
