// Package blob implements the two-tier storage for one file's Envelope: a
// Memory blob holds the whole envelope in RAM, and a Disk blob keeps every
// field except the encrypted body in RAM while the body lives in a file on
// local disk. A single mutex guards the tier transition.
package blob
