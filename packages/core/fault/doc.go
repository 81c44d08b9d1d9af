// Package fault defines the error taxonomy shared across satchel.
//
// Every failure surfaced to a user is one of four kinds: validation,
// configuration, network, or storage. The CLI maps kinds to exit codes;
// library code classifies with IsKind instead of matching message text.
package fault
