package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/portfolio"
	"github.com/Zachkp/folio/internal/store"
)

func TestExportData_NothingStored(t *testing.T) {
	var buf bytes.Buffer
	err := exportData(context.Background(), store.NewMemoryStore(), &buf)
	assert.ErrorIs(t, err, errNoData)
	assert.Empty(t, buf.String())
}

func TestImportThenExport(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	doc := `{
	  "skills": [{"id": 3, "icon": "🐹", "title": "Go", "description": "Services"}],
	  "achievements": [],
	  "experience": [{"id": 2, "title": "Analyst", "date": "2025", "description": "Reports", "tags": ["SQL"]}]
	}`
	require.NoError(t, importData(ctx, st, strings.NewReader(doc), zap.NewNop()))

	var buf bytes.Buffer
	require.NoError(t, exportData(ctx, st, &buf))

	var got portfolio.Data
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	want := portfolio.Data{
		Skills:       []portfolio.Skill{{ID: 3, Icon: "🐹", Title: "Go", Description: "Services"}},
		Achievements: []portfolio.Achievement{},
		Experience:   []portfolio.Experience{{ID: 2, Title: "Analyst", Date: "2025", Description: "Reports", Tags: []string{"SQL"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("exported data mismatch (-want +got):\n%s", diff)
	}
}

func TestImportData_RejectsUnknownFields(t *testing.T) {
	st := store.NewMemoryStore()
	err := importData(context.Background(), st, strings.NewReader(`{"projects": []}`), zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, st.Raw())
}

func TestImportData_RejectsDuplicateIDs(t *testing.T) {
	st := store.NewMemoryStore()
	doc := `{"skills": [
	  {"id": 7, "icon": "A", "title": "A", "description": "a"},
	  {"id": 7, "icon": "B", "title": "B", "description": "b"},
	  {"id": 0, "icon": "C", "title": "C", "description": "c"}
	]}`
	err := importData(context.Background(), st, strings.NewReader(doc), zap.NewNop())
	assert.ErrorIs(t, err, portfolio.ErrInvalidID)
	assert.Nil(t, st.Raw())
}

func TestAdminCredentials(t *testing.T) {
	c := config.Default()
	creds := adminCredentials(c)
	assert.Equal(t, config.DefaultAdminUsername, creds.Username)
	assert.Equal(t, config.DefaultAdminPassword, creds.Password)

	c.Admin.Username = "owner"
	c.Admin.PasswordHash = "$2a$10$abcdefghijklmnopqrstuu"
	creds = adminCredentials(c)
	assert.Equal(t, "owner", creds.Username)
	assert.Empty(t, creds.Password)
	assert.Equal(t, c.Admin.PasswordHash, creds.PasswordHash)
}

func TestNewSubmitter(t *testing.T) {
	c := config.Default()
	_, simulated := newSubmitter(c).(contact.Simulated)
	assert.True(t, simulated)

	c.SMTP.User = "me@example.com"
	c.SMTP.Password = "app-password"
	_, isSMTP := newSubmitter(c).(*contact.SMTPSubmitter)
	assert.True(t, isSMTP)
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))

	l, err = newLogger("warn", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	_, err = newLogger("loud", false)
	assert.Error(t, err)
}
