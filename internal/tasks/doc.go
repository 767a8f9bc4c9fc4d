// Package tasks holds the task model, the task store and the language-model
// task extractor.
//
// The Store interface is the only write path for task records: the extractor
// inserts, the management surface completes and annotates. MemoryStore serves
// tests and one-shot CLI runs; GoogleStore persists tasks to Google Tasks.
package tasks
