// Package workflow defines the Temporal workflows for exam grading.
//
// Workflows here are deterministic: they validate input, set activity
// options and delegate every provider call to activities. Retry behavior
// lives in the activity options, keyed on the failure kind carried by each
// activity's application error type.
package workflow
