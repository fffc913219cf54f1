// Package fixtures builds schedule records for tests.
package fixtures
