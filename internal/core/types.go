package core

import "time"

const (
	TuskName          = "TuskChat"
	TuskUserAgent     = "TuskChat/0.1"
	TuskRepositoryURL = "https://github.com/sandevgo/tuskchat"
	TuskVersion       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"-"`
}

// Intent is the outcome of query classification.
type Intent string

const (
	IntentGreeting Intent = "greeting"
	IntentProject  Intent = "project"
	IntentPersonal Intent = "personal"
	IntentGeneral  Intent = "general"
)

type DocumentType string

const (
	DocumentPersonalInfo DocumentType = "personal_info"
	DocumentProject      DocumentType = "project"
	DocumentGeneral      DocumentType = "general"
)

// DocumentType maps a retrieval intent to the only document type it may search.
// Greeting and general intents map to nothing.
func (i Intent) DocumentType() (DocumentType, bool) {
	switch i {
	case IntentProject:
		return DocumentProject, true
	case IntentPersonal:
		return DocumentPersonalInfo, true
	default:
		return "", false
	}
}

// DocumentChunk is a bounded segment of a knowledge base file.
// Chunks are immutable once produced by ingestion.
type DocumentChunk struct {
	ID           int64        `json:"id,omitempty"`
	SourceFile   string       `json:"source_file"`
	ChunkIndex   int          `json:"chunk_index"`
	Heading      *string      `json:"heading,omitempty"`
	Content      string       `json:"content"`
	Embedding    []float32    `json:"-"`
	CharCount    int          `json:"char_count"`
	WordCount    int          `json:"word_count"`
	DocumentType DocumentType `json:"document_type"`
}

type RetrievalResult struct {
	Chunk      DocumentChunk `json:"chunk"`
	Similarity float64       `json:"similarity"`
}

type LoggedMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	At        time.Time `json:"at"`
	WordCount int       `json:"word_count"`
}

// TurnLog is one user/assistant exchange, emitted for analytics only.
type TurnLog struct {
	SessionID        string        `json:"session_id"`
	TurnID           string        `json:"turn_id"`
	User             LoggedMessage `json:"user"`
	Assistant        LoggedMessage `json:"assistant"`
	LatencyMs        int64         `json:"latency_ms"`
	ContextWordCount int           `json:"context_word_count"`
}

type RetrievalLog struct {
	SessionID       string    `json:"session_id"`
	TurnID          string    `json:"turn_id"`
	Query           string    `json:"query"`
	ChunksRetrieved int       `json:"chunks_retrieved"`
	LatencyMs       int64     `json:"latency_ms"`
	Classification  Intent    `json:"classification"`
	CreatedAt       time.Time `json:"created_at"`
}

type IndexStats struct {
	TotalFiles  int
	TotalChunks int
	TotalTokens int
	Duration    time.Duration
}
