package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The train table's key column is train_id; only its JSON shape is
// train_no. Every whitelisted sort value must resolve to a real column or
// the whole trains listing breaks at query time.
func TestTrainSortColumnsResolveToSchemaColumns(t *testing.T) {
	schemaColumns := map[string]bool{
		"train_id":   true,
		"train_name": true,
		"train_type": true,
	}

	for key, col := range trainSortColumns {
		assert.Truef(t, schemaColumns[col], "sort key %q maps to unknown column %q", key, col)
	}

	t.Run("json spelling sorts by the key column", func(t *testing.T) {
		assert.Equal(t, "train_id", trainSortColumns["train_no"])
	})

	t.Run("unknown sort key is not whitelisted", func(t *testing.T) {
		_, ok := trainSortColumns["booking_status; DROP TABLE train"]
		assert.False(t, ok)
	})
}
