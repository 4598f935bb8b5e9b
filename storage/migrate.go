package storage

import (
	"encoding/json"
	"fmt"
)

// CurrentVersion is the schema version written with every save. Persisted
// payloads older than this are migrated on load; evolution is additive only,
// so each step fills or renames keys and never discards data.
//
// History:
//
//	v1  initial format; per-category counters lived under "stats"
//	v2  "stats" renamed to "category_stats"; rule stats and the incorrect
//	    question set were added
//	v3  quiz history entries gained per-question answers; total study time
//	    added (absent fields default to zero)
const CurrentVersion = 3

// Migrate upgrades a persisted payload from an older schema version to the
// current one. Version 0 (absent) means first run and never reaches here.
func Migrate(payload []byte, fromVersion int) ([]byte, error) {
	if fromVersion >= CurrentVersion {
		return payload, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("migrate v%d: %w", fromVersion, err)
	}

	for v := fromVersion; v < CurrentVersion; v++ {
		switch v {
		case 1:
			migrateV1toV2(doc)
		case 2:
			// v2 -> v3 is purely additive; new fields default on decode.
		}
	}

	return json.Marshal(doc)
}

func migrateV1toV2(doc map[string]json.RawMessage) {
	if raw, ok := doc["stats"]; ok {
		if _, exists := doc["category_stats"]; !exists {
			doc["category_stats"] = raw
		}
		delete(doc, "stats")
	}
}
