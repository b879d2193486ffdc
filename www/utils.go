package www

import (
	"encoding/json"
	"net/url"
	"strconv"
)

func intOrDefault(values url.Values, key string, defaultValue int) int {
	if v := values.Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func jsonMessage(m Message) ([]byte, error) {
	return json.Marshal(m)
}
