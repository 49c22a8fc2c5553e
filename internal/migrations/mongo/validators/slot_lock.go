package validators

import "go.mongodb.org/mongo-driver/bson"

// SlotLockValidator covers the advisory lock documents. The _id carries the
// slot coordinates, so the schema only pins the expiry bookkeeping.
var SlotLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"expires_at",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"expires_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
