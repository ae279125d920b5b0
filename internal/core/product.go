package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ProductID is the opaque identifier of a catalog product. It is the join key
// between the locally displayed cards and the remote authority.
type ProductID string

// String returns the identifier as a string.
func (id ProductID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty.
func (id ProductID) IsZero() bool {
	return id == ""
}

// UnmarshalJSON accepts both JSON strings and JSON numbers, since some
// authorities emit integer product ids.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("product id must be a string or a number")
	}
	*id = ProductID(n.String())
	return nil
}

// MarshalJSON writes canonical integer ids ("12", not "012") as JSON
// numbers so authorities that key products by integer match them. Every
// other id is written as a string.
func (id ProductID) MarshalJSON() ([]byte, error) {
	if id.isInteger() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ProductID) isInteger() bool {
	s := string(id)
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	_, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil
}

// FeedbackAction is the kind of feedback recorded by the remote authority.
type FeedbackAction string

const (
	// FeedbackPurchase records positive interest in a product.
	FeedbackPurchase FeedbackAction = "purchase"
	// FeedbackDislike records that a product was dismissed.
	FeedbackDislike FeedbackAction = "dislike"
)

// Valid reports whether the action is one the authority understands.
func (a FeedbackAction) Valid() bool {
	return a == FeedbackPurchase || a == FeedbackDislike
}
