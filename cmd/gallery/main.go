// Gallery is the account lifecycle service of the gallery backend.
//
// It keeps the registry of pending account deletions, purges accounts whose
// grace period has elapsed and exposes an internal HTTP API to the web tier.
//
// Usage:
//
//	# Start the service with default configuration
//	gallery run
//
//	# Start with a configuration file
//	gallery run --config /etc/gallery/gallery.yaml
//
//	# Log what would be purged without deleting anything
//	gallery run --dry-run
//
//	# Run one sweep now and exit
//	gallery sweep --config /etc/gallery/gallery.yaml
//
//	# List pending deletions from the snapshot
//	gallery pending list --format json
package main

func main() {
	Execute()
}
