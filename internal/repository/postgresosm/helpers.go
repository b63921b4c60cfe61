package postgresosm

import (
	"encoding/json"
	"fmt"
	"strings"
)

func parseTags(raw []byte) map[string]string {
	if len(raw) == 0 {
		return map[string]string{}
	}

	var tmp map[string]string
	if err := json.Unmarshal(raw, &tmp); err != nil {
		return map[string]string{}
	}

	return tmp
}

func pickTag(tags map[string]string, keys ...string) string {
	for _, key := range keys {
		if val, ok := tags[key]; ok && strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

// externalID строит идентификатор объекта в виде "node/123".
// osm2pgsql хранит отношения с отрицательным osm_id.
func externalID(osmType string, osmID int64) string {
	if osmID < 0 {
		osmID = -osmID
	}
	return fmt.Sprintf("%s/%d", osmType, osmID)
}
