package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"usertemplate/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userPage struct {
	Items      []models.User `json:"items"`
	TotalItems int64         `json:"total_items"`
	TotalPages int           `json:"total_pages"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	OrderBy    string        `json:"order_by"`
	Direction  string        `json:"direction"`
	Links      []struct {
		Page    int    `json:"page"`
		URL     string `json:"url"`
		Current bool   `json:"current"`
	} `json:"links"`
	SortLinks map[string]struct {
		URL       string `json:"url"`
		Direction string `json:"direction"`
		Active    bool   `json:"active"`
	} `json:"sort_links"`
}

func TestListUsersHandler(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.addUser(t, "Admin", "admin@mail.com", "admin", models.RoleAdmin)
	manager := ts.addUser(t, "Manager", "manager@mail.com", "manager", models.RoleManager)
	guest := ts.addUser(t, "Guest", "guest@mail.com", "guest", models.RoleGuest)

	rr := ts.do(t, http.MethodGet, "/api/v1/users", nil, ts.sessionFor(t, guest))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/v1/users?page=1&size=2&order=name&direction=asc&q=keep", nil, ts.sessionFor(t, manager))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var page userPage
	decode(t, rr, &page)
	assert.EqualValues(t, 3, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Admin", page.Items[0].Name)
	assert.Equal(t, "Guest", page.Items[1].Name)
	assert.Equal(t, "name", page.OrderBy)

	require.Len(t, page.Links, 2)
	assert.True(t, page.Links[0].Current)
	assert.Contains(t, page.Links[1].URL, "page=2")
	assert.Contains(t, page.Links[1].URL, "q=keep")

	assert.True(t, page.SortLinks["name"].Active)
	assert.Contains(t, page.SortLinks["name"].URL, "direction=desc")
	assert.Contains(t, page.SortLinks["email"].URL, "direction=asc")

	rr = ts.do(t, http.MethodGet, "/api/v1/users?page=abc&size=-4", nil, ts.sessionFor(t, admin))
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &page)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, "id", page.OrderBy)
}

func TestAdminUserHandlers(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.addUser(t, "Admin", "admin@mail.com", "admin", models.RoleAdmin)
	manager := ts.addUser(t, "Manager", "manager@mail.com", "manager", models.RoleManager)
	guest := ts.addUser(t, "Guest", "guest@mail.com", "guest", models.RoleGuest)
	adminSession := ts.sessionFor(t, admin)
	path := fmt.Sprintf("/api/v1/users/%d", guest.ID)

	t.Run("manager is not an admin", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, path, nil, ts.sessionFor(t, manager))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("get", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, path, nil, adminSession)
		require.Equal(t, http.StatusOK, rr.Code)
		var u models.User
		decode(t, rr, &u)
		assert.Equal(t, guest.Email, u.Email)

		rr = ts.do(t, http.MethodGet, "/api/v1/users/9999", nil, adminSession)
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr = ts.do(t, http.MethodGet, "/api/v1/users/abc", nil, adminSession)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("update role", func(t *testing.T) {
		rr := ts.do(t, http.MethodPut, path, jsonBody{"name": "Promoted", "email": "guest@mail.com", "role": "manager"}, adminSession)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var u models.User
		decode(t, rr, &u)
		assert.Equal(t, models.RoleManager, u.Role)

		rr = ts.do(t, http.MethodPut, path, jsonBody{"name": "X", "email": "guest@mail.com", "role": "superuser"}, adminSession)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = ts.do(t, http.MethodPut, path, jsonBody{"name": "X", "email": "manager@mail.com", "role": "guest"}, adminSession)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("admin cannot demote self", func(t *testing.T) {
		self := fmt.Sprintf("/api/v1/users/%d", admin.ID)
		rr := ts.do(t, http.MethodPut, self, jsonBody{"name": "Admin", "email": "admin@mail.com", "role": "guest"}, adminSession)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rr := ts.do(t, http.MethodDelete, path, nil, adminSession)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = ts.do(t, http.MethodDelete, path, nil, adminSession)
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", admin.ID), nil, adminSession)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
