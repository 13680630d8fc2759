// Package translate wraps the machine translation provider.
package translate
