package backend

import "encoding/json"

// Analysis modes accepted by the extraction service.
const (
	ModeText  = "text"
	ModeAudio = "audio"
)

// AnalyzeRequest submits text or transport-encoded audio for extraction.
type AnalyzeRequest struct {
	Mode        string `json:"mode"`
	Locale      string `json:"locale,omitempty"`
	Text        string `json:"text,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"`
}

// Extracted holds the structured interpretation of one request.
type Extracted struct {
	Intent            string          `json:"intent"`
	Urgency           string          `json:"urgency"`
	Summary           string          `json:"summary"`
	FollowUpQuestions []string        `json:"follow_up_questions,omitempty"`
	Entities          json.RawMessage `json:"entities,omitempty"`
}

// Evidence is one grounding chunk returned by the retrieval service.
type Evidence struct {
	Doc   string  `json:"doc"`
	Chunk int     `json:"chunk"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// ReplyDraft is the suggested response composed from the extraction.
type ReplyDraft struct {
	From      string   `json:"from,omitempty"`
	To        string   `json:"to,omitempty"`
	Subject   string   `json:"subject,omitempty"`
	HTML      string   `json:"html,omitempty"`
	Text      string   `json:"text,omitempty"`
	Citations []string `json:"citations,omitempty"`
}

// Action is one proposed side effect with its editable payload.
type Action struct {
	ActionType string         `json:"action_type"`
	Confidence float64        `json:"confidence"`
	Preview    string         `json:"preview,omitempty"`
	Payload    map[string]any `json:"payload"`
}

// AnalyzeResponse is the full result of one extraction run.
type AnalyzeResponse struct {
	RunID          string     `json:"run_id"`
	Transcript     string     `json:"transcript,omitempty"`
	Extracted      Extracted  `json:"extracted"`
	Evidence       []Evidence `json:"evidence"`
	ReplyDraft     ReplyDraft `json:"reply_draft"`
	ActionsPreview []Action   `json:"actions_preview"`
}

// ConfirmRequest submits the full serialized action list for execution.
// Each entry carries the action fields plus confirmed and skip flags;
// the execution service honors skip, not the caller.
type ConfirmRequest struct {
	RunID   string           `json:"run_id"`
	Actions []map[string]any `json:"actions"`
}

// ExecutionResult is the outcome of one submitted action.
type ExecutionResult struct {
	ActionType string         `json:"action_type"`
	Status     string         `json:"status"`
	Result     map[string]any `json:"result"`
}

// ConfirmResponse returns one result per submitted action, in order.
type ConfirmResponse struct {
	RunID   string            `json:"run_id"`
	Results []ExecutionResult `json:"results"`
}

// AdjustRequest submits a correction instruction against one action.
type AdjustRequest struct {
	Mode        string `json:"mode"`
	Locale      string `json:"locale,omitempty"`
	Text        string `json:"text,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"`
	Action      Action `json:"action"`
}

// AdjustResponse carries the normalized transcript and, when the service
// resolved one, the adjusted action.
type AdjustResponse struct {
	UserText string  `json:"user_text,omitempty"`
	Action   *Action `json:"action,omitempty"`
}
