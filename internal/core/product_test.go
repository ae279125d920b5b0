package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ProductID
	}{
		{"string", `"42"`, "42"},
		{"number", `42`, "42"},
		{"padded string", `" 7 "`, "7"},
		{"null", `null`, ""},
		{"opaque", `"sku-abc"`, "sku-abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ProductID
			require.NoError(t, json.Unmarshal([]byte(tt.input), &id))
			assert.Equal(t, tt.want, id)
		})
	}

	t.Run("rejects objects", func(t *testing.T) {
		var id ProductID
		assert.Error(t, json.Unmarshal([]byte(`{"id":1}`), &id))
	})

	t.Run("decodes inside a slice", func(t *testing.T) {
		var ids []ProductID
		require.NoError(t, json.Unmarshal([]byte(`[1,"2",3]`), &ids))
		assert.Equal(t, []ProductID{"1", "2", "3"}, ids)
	})
}

func TestProductID_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		id   ProductID
		want string
	}{
		{"integer", "9", `9`},
		{"zero", "0", `0`},
		{"negative", "-4", `-4`},
		{"leading zero", "007", `"007"`},
		{"opaque", "sku-abc", `"sku-abc"`},
		{"decimal", "1.5", `"1.5"`},
		{"overflow", "99999999999999999999", `"99999999999999999999"`},
		{"empty", "", `""`},
		{"minus only", "-", `"-"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}

	t.Run("integer ids survive a round trip as numbers", func(t *testing.T) {
		var ids []ProductID
		require.NoError(t, json.Unmarshal([]byte(`[1,"2",3,"sku-4"]`), &ids))

		data, err := json.Marshal(struct {
			ExcludeIDs []ProductID `json:"exclude_ids"`
		}{ExcludeIDs: ids})
		require.NoError(t, err)
		assert.JSONEq(t, `{"exclude_ids":[1,2,3,"sku-4"]}`, string(data))
	})
}

func TestFeedbackAction_Valid(t *testing.T) {
	assert.True(t, FeedbackPurchase.Valid())
	assert.True(t, FeedbackDislike.Valid())
	assert.False(t, FeedbackAction("love").Valid())
}

func TestToggleMode(t *testing.T) {
	t.Run("addable", func(t *testing.T) {
		assert.Equal(t, "addable", ModeAddable.String())
		assert.Equal(t, "+", ModeAddable.Sign())
		assert.Equal(t, "Add to Cart", ModeAddable.Label())
	})

	t.Run("removable", func(t *testing.T) {
		assert.Equal(t, "removable", ModeRemovable.String())
		assert.Equal(t, "-", ModeRemovable.Sign())
		assert.Equal(t, "Remove from Cart", ModeRemovable.Label())
	})
}

func TestCard(t *testing.T) {
	t.Run("validates id", func(t *testing.T) {
		assert.Error(t, Card{}.Validate())
		assert.NoError(t, Card{ID: "1"}.Validate())
	})

	t.Run("rejects negative price", func(t *testing.T) {
		assert.Error(t, Card{ID: "1", Price: -1}.Validate())
	})

	t.Run("formats price", func(t *testing.T) {
		assert.Equal(t, "₹499.00", Card{Price: 499}.PriceText())
		assert.Equal(t, "₹12.50", Card{Price: 12.5}.PriceText())
	})
}
