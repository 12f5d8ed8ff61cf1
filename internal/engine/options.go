package engine

import "github.com/agentcore/ramengine/internal/model"

// KindAuto is the input directive meaning "classify me"; it is never a
// stored kind value.
const KindAuto = "auto"

// RememberOptions configures a remember() call. Kind may be any enum value
// or the literal "auto" directive; the empty string is equivalent to
// "auto".
type RememberOptions struct {
	Kind          string      `validate:"omitempty,oneof=identity task knowledge reference note unclassified auto"`
	Scope         model.Scope `validate:"omitempty,oneof=session project global"`
	Importance    *float64    `validate:"omitempty,gte=0,lte=1"`
	ValidityScore *float64    `validate:"omitempty,gte=0,lte=1"`
	IsNegative    bool
}

// RecallOptions configures a recall()/recallScored() call.
type RecallOptions struct {
	Limit       int          `validate:"omitempty,gte=1"`
	RecallLimit *int         `validate:"omitempty,gte=1"`
	Scope       *model.Scope `validate:"omitempty,oneof=session project global"`
}

// BuildContextOptions configures a build-context() call.
type BuildContextOptions struct {
	Limit    int `validate:"omitempty,gte=1"`
	MaxChars int `validate:"omitempty,gte=1"`
}

// ListOptions configures a list() call.
type ListOptions struct {
	Scope  *model.Scope `validate:"omitempty,oneof=session project global"`
	Kind   *model.Kind  `validate:"omitempty,oneof=identity task knowledge reference note unclassified"`
	Query  string
	Limit  int `validate:"omitempty,gte=1,lte=200"`
	Offset int `validate:"omitempty,gte=0"`
}

// CountByKindOptions configures a count-by-kind() call.
type CountByKindOptions struct {
	Scope *model.Scope `validate:"omitempty,oneof=session project global"`
	Query string
}

// Status is the read-only payload returned by status().
type Status struct {
	Path       string    `json:"path"`
	ANN        ANNStatus `json:"ann"`
	CorpusSize int       `json:"corpusSize"`
}

// ANNStatus is the nested ann.enabled/ann.message pair inside Status.
type ANNStatus struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message,omitempty"`
}
