package entity

const (
	StatusRendered = "rendered"
	StatusFailed   = "failed"
)

// Sample is the persisted record of one generated image.
type Sample struct {
	ID         string         `json:"id"`
	Index      uint64         `json:"index"`
	Status     string         `json:"status"`
	Text       string         `json:"text"`
	Font       string         `json:"font"`
	Background string         `json:"background,omitempty"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Boxes      Boxes          `json:"boxes"`
	Plan       map[string]any `json:"plan"`
	Error      string         `json:"error,omitempty"`
}

// RenderTask is the message a renderer worker consumes: a serialized plan
// to replay under the given sample id.
type RenderTask struct {
	SampleID string         `json:"sample_id"`
	Index    uint64         `json:"index"`
	Plan     map[string]any `json:"plan"`
}

type GenerateRequest struct {
	Text  string `json:"text" binding:"required"`
	Index uint64 `json:"index"`
}

type ReplayRequest struct {
	Plan map[string]any `json:"plan" binding:"required"`
}

type SampleResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Boxes  Boxes  `json:"boxes"`
}

type BatchReport struct {
	Requested int      `json:"requested"`
	Rendered  int      `json:"rendered"`
	Failed    int      `json:"failed"`
	SampleIDs []string `json:"sample_ids"`
}
