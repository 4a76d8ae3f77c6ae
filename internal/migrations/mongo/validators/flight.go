package validators

import "go.mongodb.org/mongo-driver/bson"

var FlightValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"company_id",
			"flight_number",
			"origin",
			"destination",
			"departure_time",
			"arrival_time",
			"price",
			"available_seats",
			"total_seats",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"company_id": bson.M{
				"bsonType": "string",
			},

			"flight_number": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 10,
			},

			"origin": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"destination": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"departure_time": bson.M{
				"bsonType": "date",
			},

			"arrival_time": bson.M{
				"bsonType": "date",
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			// The reservation update enforces the lower bound at runtime;
			// the schema backstops it at the storage layer.
			"available_seats": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"total_seats": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  1000,
			},

			"status": bson.M{
				"enum": []string{"scheduled", "completed", "cancelled"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
