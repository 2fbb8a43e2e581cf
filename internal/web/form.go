// ABOUTME: Parsing of submitted replacement link lists
// ABOUTME: Accepts indexed form fields or a single JSON-encoded data field

package web

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/linkdeck/linkdeck/internal/links"
)

// parseSubmission extracts the submitted link pairs in submitted order.
// Two payload shapes are accepted: a single "data" field holding a JSON
// array of {name,url} objects, or repeated link_<i>_name / link_<i>_url
// fields indexed from zero. The maximum count is an editing-layer limit;
// entries beyond it are ignored.
func parseSubmission(form url.Values, max int) ([]links.Link, error) {
	if data := form.Get("data"); data != "" {
		var list []links.Link
		if err := json.Unmarshal([]byte(data), &list); err != nil {
			return nil, fmt.Errorf("decoding data field: %w", err)
		}
		if len(list) > max {
			list = list[:max]
		}
		return list, nil
	}

	var list []links.Link
	for i := 0; i < max; i++ {
		nameKey := fmt.Sprintf("link_%d_name", i)
		urlKey := fmt.Sprintf("link_%d_url", i)

		_, hasName := form[nameKey]
		_, hasURL := form[urlKey]
		if !hasName && !hasURL {
			continue
		}

		list = append(list, links.Link{
			Name: form.Get(nameKey),
			URL:  form.Get(urlKey),
		})
	}
	return list, nil
}
