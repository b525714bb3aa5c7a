package migrations

import "go.mongodb.org/mongo-driver/bson"

var SportValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "name"},
		"additionalProperties": false,
		"properties": bson.M{
			"_id":  bson.M{"bsonType": "string", "minLength": 1, "maxLength": 50},
			"name": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
		},
	},
}

var hhmm = bson.M{"bsonType": "string", "pattern": `^([01]?[0-9]|2[0-3]):[0-5][0-9]$|^24:00$`}

var VenueValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "name", "open", "close", "courts", "position"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
			"name":       bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
			"address":    bson.M{"bsonType": "string", "maxLength": 200},
			"facilities": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
			"open":       hhmm,
			"close":      hhmm,
			"position":   bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"courts": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"id", "number", "sports"},
					"properties": bson.M{
						"id":     bson.M{"bsonType": "string"},
						"number": bson.M{"bsonType": "string"},
						"status": bson.M{"enum": []string{"AVAILABLE", "RESERVED", "UNAVAILABLE"}},
						"sports": bson.M{
							"bsonType": "array",
							"minItems": 1,
							"items": bson.M{
								"bsonType": "object",
								"required": []string{"sport", "price_per_hour"},
								"properties": bson.M{
									"sport":          bson.M{"bsonType": "string"},
									"price_per_hour": bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
								},
							},
						},
					},
				},
			},
		},
	},
}
