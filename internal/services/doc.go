// Package services defines the shared error taxonomy and context annotations
// used across the narration pipeline's external-service clients.
package services
