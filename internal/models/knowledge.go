package models

// Corpus collections.
const (
	CollectionFinancialKnowledge = "financial_knowledge"
	CollectionBudgetingTips      = "budgeting_tips"
	CollectionTaxRules           = "tax_rules"
)

// KnowledgeDocument is an immutable snippet of the knowledge corpus.
type KnowledgeDocument struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Source    string    `json:"source" yaml:"source"`
	Embedding []float32 `json:"-" yaml:"embedding,omitempty,flow"`
}

// SearchResult pairs a document with its cosine similarity to a query.
type SearchResult struct {
	Document   KnowledgeDocument `json:"document" yaml:"document"`
	Similarity float64           `json:"similarity" yaml:"similarity"`
}

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one message of a conversation. Histories are owned by the
// caller and only ever appended to.
type ChatTurn struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// ChatSource is a knowledge snippet that grounded a reply.
type ChatSource struct {
	ID         string  `json:"id" yaml:"id"`
	Source     string  `json:"source" yaml:"source"`
	Preview    string  `json:"preview" yaml:"preview"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// ChatReply is the advisor's answer together with the extended history.
type ChatReply struct {
	Reply   string       `json:"reply" yaml:"reply"`
	History []ChatTurn   `json:"history" yaml:"history"`
	Sources []ChatSource `json:"sources" yaml:"sources"`
	// Grounded is false when retrieval failed and the reply came from the
	// model alone.
	Grounded bool `json:"grounded" yaml:"grounded"`
}
