package people

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/contactbridge/pkg/contacts"
	"github.com/agentstation/contactbridge/pkg/errors"
)

func TestListAllPaginates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/people/me/connections", r.URL.Path)

		var page listResponse
		if r.URL.Query().Get("pageToken") == "" {
			page = listResponse{
				Connections: []person{
					{ResourceName: "people/c1", EmailAddresses: []wireItem{{Value: "jane@x.com"}}},
				},
				NextPageToken: "page2",
			}
		} else {
			require.Equal(t, "page2", r.URL.Query().Get("pageToken"))
			page = listResponse{
				Connections: []person{
					{ResourceName: "people/c2", EmailAddresses: []wireItem{{Value: "john@y.com"}}},
				},
			}
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	got, err := New(srv.URL, srv.Client()).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "people/c1", got[0].ResourceID)
	assert.Equal(t, "john@y.com", got[1].PrimaryEmail())
}

func TestListByLabelFiltersMemberships(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/contactGroups":
			_ = json.NewEncoder(w).Encode(groupListResponse{
				ContactGroups: []contactGroup{{ResourceName: "contactGroups/g1", Name: "bridge-sync"}},
			})
		case "/v1/people/me/connections":
			_ = json.NewEncoder(w).Encode(listResponse{
				Connections: []person{
					{
						ResourceName: "people/c1",
						Memberships: []membership{
							{ContactGroupMembership: &groupMembership{ContactGroupResourceName: "contactGroups/g1"}},
						},
					},
					{ResourceName: "people/c2"},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	got, err := New(srv.URL, srv.Client()).ListByLabel(context.Background(), "bridge-sync")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "people/c1", got[0].ResourceID)
}

func TestListByLabelMissingGroupIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/contactGroups", r.URL.Path)
		_ = json.NewEncoder(w).Encode(groupListResponse{})
	}))
	defer srv.Close()

	got, err := New(srv.URL, srv.Client()).ListByLabel(context.Background(), "bridge-sync")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCreateStripsIdentifiers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/people:createContact", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var body person
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Empty(t, body.ResourceName)
		assert.Empty(t, body.Etag)
		require.Len(t, body.Names, 1)
		assert.Equal(t, "Jane", body.Names[0].GivenName)

		_ = json.NewEncoder(w).Encode(person{ResourceName: "people/c7", Etag: "etag-1"})
	}))
	defer srv.Close()

	rec := &contacts.ContactRecord{
		ResourceID: "people/old",
		Token:      "etag-old",
		Names:      []contacts.Name{{Given: "Jane", Family: "Doe"}},
	}
	id, err := New(srv.URL, srv.Client()).Create(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "people/c7", id)
}

func TestUpdateSendsEtag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/people/c7:updateContact", r.URL.Path)
		require.Equal(t, http.MethodPatch, r.Method)

		var body person
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "people/c7", body.ResourceName)
		assert.Equal(t, "etag-3", body.Etag)

		_ = json.NewEncoder(w).Encode(person{ResourceName: "people/c7", Etag: "etag-4"})
	}))
	defer srv.Close()

	rec := &contacts.ContactRecord{Names: []contacts.Name{{Given: "Jane"}}}
	err := New(srv.URL, srv.Client()).Update(context.Background(), "people/c7", "etag-3", rec)
	require.NoError(t, err)
}

func TestUpdateStaleEtag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"precondition failed"}`, http.StatusPreconditionFailed)
	}))
	defer srv.Close()

	rec := &contacts.ContactRecord{Names: []contacts.Name{{Given: "Jane"}}}
	err := New(srv.URL, srv.Client()).Update(context.Background(), "people/c7", "etag-stale", rec)
	require.Error(t, err)
	assert.True(t, errors.IsStaleToken(err))
}

func TestAddToLabelCreatesGroupOnFirstUse(t *testing.T) {
	var createdGroup, modified bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/contactGroups" && r.Method == http.MethodGet:
			_ = json.NewEncoder(w).Encode(groupListResponse{})
		case r.URL.Path == "/v1/contactGroups" && r.Method == http.MethodPost:
			var body createGroupRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "bridge-sync", body.ContactGroup.Name)
			createdGroup = true
			_ = json.NewEncoder(w).Encode(contactGroup{ResourceName: "contactGroups/g9", Name: "bridge-sync"})
		case r.URL.Path == "/v1/contactGroups/g9/members:modify":
			var body modifyMembersRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, []string{"people/c7"}, body.ResourceNamesToAdd)
			modified = true
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{}"))
		default:
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	err := New(srv.URL, srv.Client()).AddToLabel(context.Background(), "people/c7", "bridge-sync")
	require.NoError(t, err)
	assert.True(t, createdGroup)
	assert.True(t, modified)
}

func TestAddToLabelCachesGroupResolution(t *testing.T) {
	groupLookups := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/contactGroups" && r.Method == http.MethodGet:
			groupLookups++
			_ = json.NewEncoder(w).Encode(groupListResponse{
				ContactGroups: []contactGroup{{ResourceName: "contactGroups/g1", Name: "bridge-sync"}},
			})
		case r.URL.Path == "/v1/contactGroups/g1/members:modify":
			_, _ = w.Write([]byte("{}"))
		default:
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	client := New(srv.URL, srv.Client())
	require.NoError(t, client.AddToLabel(context.Background(), "people/c1", "bridge-sync"))
	require.NoError(t, client.AddToLabel(context.Background(), "people/c2", "bridge-sync"))
	assert.Equal(t, 1, groupLookups)
}

func TestRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/people/c7", r.URL.Path)
		_ = json.NewEncoder(w).Encode(person{ResourceName: "people/c7", Etag: "etag-5"})
	}))
	defer srv.Close()

	token, err := New(srv.URL, srv.Client()).RefreshToken(context.Background(), "people/c7")
	require.NoError(t, err)
	assert.Equal(t, "etag-5", token)
}

func TestRefreshTokenNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no such person"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL, srv.Client()).RefreshToken(context.Background(), "people/c404")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestConvertRoundTrip(t *testing.T) {
	rec := &contacts.ContactRecord{
		ResourceID: "people/c1",
		Token:      "etag-1",
		Names:      []contacts.Name{{Given: "Jane", Family: "Doe", Display: "Jane Doe"}},
		Emails:     []contacts.Item{{Value: "jane@x.com", Label: "home", Formatted: "Home"}},
		Addresses: []contacts.Item{{
			Label: "home",
			Extra: map[string]string{"streetAddress": "1 Main St", "city": "Berlin"},
		}},
		Organizations: []contacts.Item{{
			Value: "ACME",
			Extra: map[string]string{"title": "Engineer"},
		}},
	}

	got := toRecord(fromRecord(rec))
	assert.Equal(t, rec, got)
}
