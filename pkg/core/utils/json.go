package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// SmartParse unmarshals input into schema, tolerating the damage JSON
// picks up in transit. Export documents get pasted through spreadsheets,
// chat windows and model replies, which introduce trailing commas,
// comments, single quotes and stray code fences. Strategies run
// strictest first:
//
//  1. standard library parse
//  2. mechanical repair (github.com/RealAlexandreAI/json-repair)
//  3. Hjson, which also accepts unquoted keys and missing commas
//
// On success it returns the JSON text that actually parsed. SmartParse
// only guarantees the bytes were syntactically usable; the caller
// decides whether the filled schema makes sense.
func SmartParse(input string, schema interface{}) (string, error) {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return input, nil
	}

	if repaired, err := repairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return repaired, nil
		}
	}

	if converted, err := hjsonToJSON(input); err == nil {
		if err := json.Unmarshal([]byte(converted), schema); err == nil {
			return converted, nil
		}
	}

	return "", fmt.Errorf("SMART_PARSE_FAILED: all parsing strategies failed for input")
}

// repairJSON fixes common mechanical damage: unquoted keys, single
// quotes, unclosed brackets, trailing commas, markdown fences.
func repairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// hjsonToJSON converts Hjson, the most permissive grammar we accept,
// into standard JSON.
func hjsonToJSON(input string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(input), &result); err != nil {
		return "", fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	return string(jsonBytes), nil
}
