package domain

// Chunk is a bounded segment of an ingested document's extracted text.
type Chunk struct {
	SourceID string `json:"source_id"`
	Ordinal  int    `json:"ordinal"`
	Text     string `json:"text"`
}

// ScoredChunk is a retrieval result: a chunk plus its similarity score.
type ScoredChunk struct {
	Chunk
	Similarity float64 `json:"similarity"`
}

// Generation defaults. Model and limits mirror the backend this service
// ships against; all of them can be overridden through configuration.
const (
	DefaultGenerationModel = "llama3.2:3b"
	DefaultTemperature     = 0.2
	DefaultMaxTokens       = 500
	DefaultTopK            = 3
)

// GenerationOptions control a single text-generation call.
type GenerationOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// WithDefaults returns a copy with unset fields filled in.
func (o GenerationOptions) WithDefaults() GenerationOptions {
	if o.Model == "" {
		o.Model = DefaultGenerationModel
	}
	if o.Temperature == 0 {
		o.Temperature = DefaultTemperature
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	return o
}
