/*
Package portalapi holds the JSON types of the field operations portal API and
a small client for it.

Handlers use the types and the predefined APIError values to write
responses; the client is used by tooling and tests that talk to a running
portal with a session cookie:

	c := portalapi.NewClient("https://portal.example.com", sessionToken)

	me, err := c.Me(ctx)
	if err != nil {
		var apiErr *portalapi.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			// sign in again
		}
	}
*/
package portalapi
