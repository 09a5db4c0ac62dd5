package catalog

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// itemDTO mirrors one record of the scraped catalog JSON.
type itemDTO struct {
	URL             string      `json:"url"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Duration        durationDTO `json:"duration"`
	TestType        typeList    `json:"test_type"`
	Type            string      `json:"type"` // legacy single-tag field
	RemoteSupport   string      `json:"remote_support"`
	AdaptiveSupport string      `json:"adaptive_support"`
}

// durationDTO accepts either an integer or a free-form string such as
// "11 minutes" or "Not specified" (the scraper emitted both over time).
type durationDTO struct {
	Minutes int
}

var leadingInt = regexp.MustCompile(`\d+`)

func (d *durationDTO) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n < 0 {
			return fmt.Errorf("negative duration %d", n)
		}
		d.Minutes = n
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a number or string: %s", string(data))
	}

	m := leadingInt.FindString(s)
	if m == "" {
		// "Not specified", "" and the like mean unknown.
		d.Minutes = 0
		return nil
	}

	if _, err := fmt.Sscanf(m, "%d", &d.Minutes); err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	return nil
}

// typeList accepts either a JSON array of tags or a single string.
type typeList []string

func (t *typeList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("test_type must be a string or array: %s", string(data))
	}
	if strings.TrimSpace(single) == "" {
		*t = nil
		return nil
	}
	*t = typeList{single}
	return nil
}
