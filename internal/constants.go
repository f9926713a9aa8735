/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

const (
	UserAgent = "baduk-td/0.1.0 (+https://github.com/mikeb26/baduk-td)"

	// StorePrefix namespaces tournament data inside a shared bucket.
	StorePrefix = "baduk-td"
	// WebCachePrefix namespaces cached roster pages inside a shared bucket.
	WebCachePrefix = "webcache"
)
