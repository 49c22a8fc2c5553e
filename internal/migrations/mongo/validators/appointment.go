package validators

import "go.mongodb.org/mongo-driver/bson"

// slotLabelPattern matches the 12-hour slot labels the API produces, e.g.
// "08:00 AM - 08:15 AM". Quarter-hour boundaries only; the service layer
// additionally checks the 15-minute span, which a regex cannot express.
const slotLabelPattern = `^(0[1-9]|1[0-2]):(00|15|30|45) (AM|PM) - (0[1-9]|1[0-2]):(00|15|30|45) (AM|PM)$`

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"provider_id",
			"patient_id",
			"day",
			"time_slot_label",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"provider_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"patient_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"day": bson.M{
				"bsonType": "date",
			},

			"time_slot_label": bson.M{
				"bsonType": "string",
				"pattern":  slotLabelPattern,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"scheduled",
					"completed",
					"cancelled",
					"no_show",
				},
			},

			"reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"consultation",
					"follow_up",
					"emergency",
				},
			},

			"urgency": bson.M{
				"bsonType": "string",
				"enum": []string{
					"low",
					"normal",
					"high",
				},
			},

			"contact_phone": bson.M{
				"bsonType":  "string",
				"maxLength": 16,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
