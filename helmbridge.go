// Package helmbridge holds module-wide metadata.
package helmbridge

// Version is the helmbridge release version.
const Version = "0.1.0"
