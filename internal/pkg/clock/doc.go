// Package clock hides time.Now behind Clocker. Scans, cursors and job
// schedules read time through it so tests can freeze or advance it with Fixed.
package clock
