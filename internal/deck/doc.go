// Package deck defines the capability interfaces the narration pipeline uses
// to read and mutate an open presentation document. The core depends only on
// these interfaces; adapters bind them to a concrete host (see memdeck for the
// in-memory double and pptx for the read-only file adapter).
package deck
