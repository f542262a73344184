// Package platform isolates operating-system specific file attributes.
package platform
