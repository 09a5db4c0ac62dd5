package domain

// Candidate pairs an item with its raw similarity from the vector index.
// Similarity is normalized to [0,1] where 1 means most similar.
type Candidate struct {
	Item       Item
	Similarity float64
}

// Recommendation is one entry of a ranked result.
type Recommendation struct {
	Item            Item
	Similarity      float64 // raw similarity from the index, [0,1]
	ConstraintScore float64 // soft constraint match, [0,1]
	FinalScore      float64 // blended ranking score
}
