package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NormalizeID converts the various identifier shapes seen at the storage
// boundary into a canonical ObjectID. Accepted shapes:
//
//	"662f..."                     hex string
//	{"$oid": "662f..."}           extended-JSON document
//	{"id": "662f..."}             API response wrapper
//	primitive.ObjectID            already canonical
func NormalizeID(v interface{}) (primitive.ObjectID, error) {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id, nil
	case string:
		return primitive.ObjectIDFromHex(id)
	case map[string]interface{}:
		if oid, ok := id["$oid"].(string); ok {
			return primitive.ObjectIDFromHex(oid)
		}
		if inner, ok := id["id"].(string); ok {
			return primitive.ObjectIDFromHex(inner)
		}
		return primitive.NilObjectID, fmt.Errorf("id document missing $oid/id field")
	case nil:
		return primitive.NilObjectID, fmt.Errorf("id is nil")
	default:
		return primitive.NilObjectID, fmt.Errorf("unsupported id type %T", v)
	}
}
