package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"email",
			"name",
			"role",
			"password_hash",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"role": bson.M{
				"enum": []string{"user", "company", "admin"},
			},

			"password_hash": bson.M{
				"bsonType": "string",
			},

			"blocked": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
