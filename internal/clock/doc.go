// SPDX-License-Identifier: MPL-2.0

// Package clock abstracts the wall clock so cache staleness can be tested
// deterministically. Production code uses Real; tests use Fake.
package clock
