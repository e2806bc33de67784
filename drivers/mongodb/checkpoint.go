package mongodb

import "github.com/surrealdb/surreal-sync/types"

// ResumeCheckpoint wraps an opaque MongoDB change-stream resume token.
// Resume tokens are only ever compared for equality by the server, so
// this type implements types.Checkpoint but not types.Ordered.
type ResumeCheckpoint struct {
	ResumeToken string `json:"resume_token"`
}

func (c ResumeCheckpoint) Backend() string { return "mongodb" }

func (c ResumeCheckpoint) IsZero() bool { return c.ResumeToken == "" }

var _ types.Checkpoint = ResumeCheckpoint{}
