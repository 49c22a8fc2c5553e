// Package sanitizer normalizes free-text appointment metadata before it is
// validated and persisted. Sanitization never rejects input; it only cleans
// it. Rejection is the validator's job.
package sanitizer
