// Package gmail provides the Gmail message source for the task pipeline.
//
// It wraps the Gmail Users service to list unread inbox messages, decodes
// MIME part trees into plain text bodies, and classifies promotional or
// automated mail that should never reach the task extractor.
package gmail
