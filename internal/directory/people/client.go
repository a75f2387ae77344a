// Package people implements the directory interface over a People-style
// REST contacts API: person resources with etags, paginated connection
// listing, and contact groups as labels. Authentication is the caller's
// concern; pass an *http.Client whose transport injects credentials.
package people

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/agentstation/contactbridge/pkg/contacts"
	"github.com/agentstation/contactbridge/pkg/directory"
	"github.com/agentstation/contactbridge/pkg/errors"
)

const (
	defaultTimeout = 30 * time.Second
	pageSize       = "200"

	// maxErrorBody bounds how much of an error response body is carried
	// into the error message.
	maxErrorBody = 512
)

// Client talks to one account's contacts API.
type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.Mutex
	groups map[string]string // label -> contact group resource name
}

var _ directory.Directory = (*Client)(nil)

// New creates a client for the API at baseURL. A nil httpClient gets a
// default with a request timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		groups:  make(map[string]string),
	}
}

// ListAll returns every contact in the account.
func (c *Client) ListAll(ctx context.Context) ([]*contacts.ContactRecord, error) {
	people, err := c.listConnections(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*contacts.ContactRecord, 0, len(people))
	for _, p := range people {
		out = append(out, toRecord(p))
	}
	return out, nil
}

// ListByLabel returns the contacts that are members of the label's group.
// An account without the group has no labeled contacts.
func (c *Client) ListByLabel(ctx context.Context, label string) ([]*contacts.ContactRecord, error) {
	groupID, err := c.groupID(ctx, label, false)
	if err != nil {
		return nil, err
	}
	if groupID == "" {
		return nil, nil
	}

	people, err := c.listConnections(ctx)
	if err != nil {
		return nil, err
	}

	var out []*contacts.ContactRecord
	for _, p := range people {
		for _, m := range p.Memberships {
			if m.ContactGroupMembership != nil && m.ContactGroupMembership.ContactGroupResourceName == groupID {
				out = append(out, toRecord(p))
				break
			}
		}
	}
	return out, nil
}

// Create inserts the contact and returns its resource name. One attempt;
// the caller decides what a failure means.
func (c *Client) Create(ctx context.Context, rec *contacts.ContactRecord) (string, error) {
	body := fromRecord(rec)
	body.ResourceName = ""
	body.Etag = ""

	var created person
	if err := c.do(ctx, http.MethodPost, "/v1/people:createContact", nil, body, &created); err != nil {
		return "", err
	}
	return created.ResourceName, nil
}

// Update overwrites the contact. The token must be the contact's current
// etag; the API rejects the write otherwise.
func (c *Client) Update(ctx context.Context, id, token string, rec *contacts.ContactRecord) error {
	body := fromRecord(rec)
	body.ResourceName = id
	body.Etag = token

	path := "/v1/" + id + ":updateContact"
	return c.do(ctx, http.MethodPatch, path, nil, body, nil)
}

// AddToLabel adds the contact to the label's group, creating the group on
// first use.
func (c *Client) AddToLabel(ctx context.Context, id, label string) error {
	groupID, err := c.groupID(ctx, label, true)
	if err != nil {
		return err
	}

	path := "/v1/" + groupID + "/members:modify"
	return c.do(ctx, http.MethodPost, path, nil, modifyMembersRequest{ResourceNamesToAdd: []string{id}}, nil)
}

// RefreshToken fetches the contact's current etag.
func (c *Client) RefreshToken(ctx context.Context, id string) (string, error) {
	var p person
	if err := c.do(ctx, http.MethodGet, "/v1/"+id, nil, nil, &p); err != nil {
		return "", err
	}
	return p.Etag, nil
}

// listConnections pages through the full connection list.
func (c *Client) listConnections(ctx context.Context) ([]person, error) {
	var people []person
	pageToken := ""
	for {
		query := url.Values{"pageSize": {pageSize}}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var page listResponse
		if err := c.do(ctx, http.MethodGet, "/v1/people/me/connections", query, nil, &page); err != nil {
			return nil, err
		}
		people = append(people, page.Connections...)

		if page.NextPageToken == "" {
			return people, nil
		}
		pageToken = page.NextPageToken
	}
}

// groupID resolves a label to its contact group resource name, optionally
// creating the group. Resolutions are cached for the client's lifetime;
// group resource names are stable.
func (c *Client) groupID(ctx context.Context, label string, create bool) (string, error) {
	c.mu.Lock()
	cached := c.groups[label]
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	var groups groupListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/contactGroups", nil, nil, &groups); err != nil {
		return "", err
	}
	for _, g := range groups.ContactGroups {
		if g.Name == label {
			c.cacheGroup(label, g.ResourceName)
			return g.ResourceName, nil
		}
	}

	if !create {
		return "", nil
	}

	var created contactGroup
	err := c.do(ctx, http.MethodPost, "/v1/contactGroups", nil, createGroupRequest{
		ContactGroup: contactGroup{Name: label},
	}, &created)
	if err != nil {
		return "", err
	}
	c.cacheGroup(label, created.ResourceName)
	return created.ResourceName, nil
}

func (c *Client) cacheGroup(label, resourceName string) {
	c.mu.Lock()
	c.groups[label] = resourceName
	c.mu.Unlock()
}

// do executes one API call with a JSON body and decodes a JSON response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.WrapParse("json", "request body", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.NewAPIError(0, endpoint, err.Error())
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &errors.APIError{Endpoint: endpoint, Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.NewAPIError(resp.StatusCode, endpoint, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WrapParse("json", "response body", err)
	}
	return nil
}
