// SPDX-License-Identifier: MPL-2.0

// Package cache persists template bodies and the template catalog on disk.
//
// Layout under the cache directory:
//
//	index.cbor                 the catalog
//	templates/<Name>.cbor      one record per canonical template name
//
// Every write goes to a temporary file in the destination directory and is
// renamed into place, so concurrent readers (including other processes) see
// either the previous record or the new one, never a torn file. Records that
// cannot be read or decoded are reported as absent.
package cache
