package indexer

import "fmt"

// Chunk is a line-aligned excerpt of a knowledge-base document and the unit
// of embedding, ranking and citation.
type Chunk struct {
	Path      string  // Relative path of the parent document
	Filename  string  // Base name of the parent document
	Title     string  // Title of the parent document
	Content   string  // Chunk text
	StartLine int     // First source line (0-based, inclusive)
	EndLine   int     // Last source line (exclusive)
	Priority  float64 // Inherited from the parent document
}

// ID identifies a chunk by its document path and start line.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s#%d", c.Path, c.StartLine)
}
