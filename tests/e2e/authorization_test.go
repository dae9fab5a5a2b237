//go:build e2e

package e2e_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mla/planning-backend/internal/adapter/postgres/testhelper"
	"github.com/mla/planning-backend/internal/domain"
)

func TestE2E_Authorization_Matrix(t *testing.T) {
	ts := setupTestServer(t)

	member := tokenFor(t, ts, domain.UserRoleMember)
	responsable := tokenFor(t, ts, domain.UserRoleResponsable)
	admin := tokenFor(t, ts, domain.UserRoleAdmin)

	p := testhelper.SeedPlanning(t, ts.Pool, domain.PlanningStatusDraft, at(0), at(4))
	base := "/plannings/" + p.ID.String()

	cases := []struct {
		name   string
		token  string
		method string
		path   string
		want   int
	}{
		{"member reads", member, http.MethodGet, base + "/full", http.StatusOK},
		{"member cannot add slot", member, http.MethodPost, base + "/slots", http.StatusForbidden},
		{"member cannot change status", member, http.MethodPatch, base + "/status", http.StatusForbidden},
		{"responsable cannot read history", responsable, http.MethodGet, base + "/history", http.StatusForbidden},
		{"admin reads history", admin, http.MethodGet, base + "/history", http.StatusOK},
		{"anonymous", "", http.MethodGet, base + "/full", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body any
			if tc.method != http.MethodGet {
				body = map[string]any{}
			}
			resp := ts.do(t, tc.method, tc.path, tc.token, body)
			assert.Equal(t, tc.want, resp.Status, "body: %s", resp.Body)
		})
	}
}
