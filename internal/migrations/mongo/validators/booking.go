package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"flight_id",
			"confirmation_id",
			"passengers",
			"total_price",
			"status",
			"booked_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"user_id": bson.M{
				"bsonType": "string",
			},

			"flight_id": bson.M{
				"bsonType": "string",
			},

			"confirmation_id": bson.M{
				"bsonType":  "string",
				"minLength": 11,
				"maxLength": 11,
			},

			"passengers": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"total_price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"status": bson.M{
				"enum": []string{"confirmed", "cancelled", "refunded"},
			},

			"booked_at": bson.M{
				"bsonType": "date",
			},

			"cancelled_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
