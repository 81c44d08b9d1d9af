// Package store persists satchel's saved requests and environments.
//
// All state lives in a single JSON document:
//
//	{
//	  "requests": [ {"name": "...", "method": "...", "url": "...", ...} ],
//	  "environments": { "dev": {"host": "..."}, ... }
//	}
//
// Saved requests are upserted by name and environments are replaced as
// whole variable sets. Requests cannot be removed. A missing document
// reads as empty; a corrupt one is a storage error.
package store
