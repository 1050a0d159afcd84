// Package storage provides JSON persistence for report snapshots.
//
// One snapshot file (snapshot.json) records the section fingerprints of the
// last dashboard build plus a bounded change log, so each build can report
// which sections changed since the previous one. The default location is
// ~/.local/share/skydaily/.
package storage
