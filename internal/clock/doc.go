// Package clock predicts the recurring world events of the game day.
//
// Events fire once per qualifying hour at a fixed minute and stay open for a
// fixed duration. Which hours qualify depends on the daylight parity of the
// calendar date: odd hours while daylight parity is active, even hours
// otherwise. Everything in this package is a pure function of its inputs;
// callers supply the current time.
package clock
