// Package e2e contains end-to-end tests for the mudra pipeline.
package e2e
