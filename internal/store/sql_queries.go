// SPDX-License-Identifier: Apache-2.0

package store

const (
	getKVValue = `
		SELECT value
		FROM kv_store
		WHERE key = $1;`

	putKVValue = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP;`

	deleteKVValue = `
		DELETE FROM kv_store
		WHERE key = $1;`
)
