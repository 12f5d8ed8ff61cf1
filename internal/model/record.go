// Package model defines the core memory data types shared across the engine.
package model

import "time"

// Kind is the semantic category of a memory.
type Kind string

const (
	KindIdentity     Kind = "identity"
	KindTask         Kind = "task"
	KindKnowledge    Kind = "knowledge"
	KindReference    Kind = "reference"
	KindNote         Kind = "note"
	KindUnclassified Kind = "unclassified"
)

// ClassifiableKinds are the kinds the classifier may output as a positive
// decision; Unclassified is only ever a low-confidence fallback.
var ClassifiableKinds = []Kind{KindIdentity, KindTask, KindKnowledge, KindReference, KindNote}

// ValidKinds are every enum value a stored record may carry.
var ValidKinds = map[Kind]bool{
	KindIdentity:     true,
	KindTask:         true,
	KindKnowledge:    true,
	KindReference:    true,
	KindNote:         true,
	KindUnclassified: true,
}

// Scope is the retention domain of a memory.
type Scope string

const (
	ScopeSession Scope = "session"
	ScopeProject Scope = "project"
	ScopeGlobal  Scope = "global"
)

// ValidScopes are the allowed scope values.
var ValidScopes = map[Scope]bool{
	ScopeSession: true,
	ScopeProject: true,
	ScopeGlobal:  true,
}

// Dims is the fixed embedding dimensionality the engine assumes throughout.
const Dims = 384

// Vector is a unit-norm embedding of length Dims.
type Vector = []float32

// Record is the persistent unit of storage — one chunk of one `remember` call.
type Record struct {
	ID             string     `json:"id"`
	ParentID       string     `json:"parentId"`
	ChunkIndex     int        `json:"chunkIndex"`
	Content        string     `json:"content"`
	Kind           Kind       `json:"kind"`
	Scope          Scope      `json:"scope"`
	Importance     float64    `json:"importance"`
	TokenCount     int        `json:"tokenCount"`
	RecallCount    int        `json:"recallCount"`
	LastRecalledAt *time.Time `json:"lastRecalledAt,omitempty"`
	ValidityScore  float64    `json:"validityScore"`
	IsNegative     bool       `json:"isNegative"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Embedding      Vector     `json:"embedding,omitempty"`
}

// Summary is a Record with its embedding stripped, for list-style output.
type Summary struct {
	ID             string     `json:"id"`
	ParentID       string     `json:"parentId"`
	ChunkIndex     int        `json:"chunkIndex"`
	Content        string     `json:"content"`
	Kind           Kind       `json:"kind"`
	Scope          Scope      `json:"scope"`
	Importance     float64    `json:"importance"`
	TokenCount     int        `json:"tokenCount"`
	RecallCount    int        `json:"recallCount"`
	LastRecalledAt *time.Time `json:"lastRecalledAt,omitempty"`
	ValidityScore  float64    `json:"validityScore"`
	IsNegative     bool       `json:"isNegative"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ToSummary drops the embedding: listings never expose raw vectors.
func (r Record) ToSummary() Summary {
	return Summary{
		ID:             r.ID,
		ParentID:       r.ParentID,
		ChunkIndex:     r.ChunkIndex,
		Content:        r.Content,
		Kind:           r.Kind,
		Scope:          r.Scope,
		Importance:     r.Importance,
		TokenCount:     r.TokenCount,
		RecallCount:    r.RecallCount,
		LastRecalledAt: r.LastRecalledAt,
		ValidityScore:  r.ValidityScore,
		IsNegative:     r.IsNegative,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
