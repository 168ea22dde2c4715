package confluence

import (
	"context"
	"net/http"
	"net/url"
)

// adminGroups are the site groups whose members may change the
// connector's tenant configuration.
var adminGroups = map[string]bool{
	"administrators":            true,
	"site-admins":               true,
	"confluence-administrators": true,
	"org-administrators":        true,
	"system-administrators":     true,
}

// IsAdmin reports whether the account belongs to an administrator group
// on the tenant's site.
func (c *Client) IsAdmin(ctx context.Context, clientKey, accountID string) (bool, error) {
	var body struct {
		Results []struct {
			Name string `json:"name"`
		} `json:"results"`
	}
	query := url.Values{"accountId": {accountID}}
	if err := c.request(ctx, clientKey, http.MethodGet,
		"/rest/api/user/memberof", query, "", nil, &body); err != nil {
		return false, err
	}

	for _, group := range body.Results {
		if adminGroups[group.Name] {
			return true, nil
		}
	}
	return false, nil
}
