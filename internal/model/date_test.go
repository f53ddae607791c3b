package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var payload struct {
		Since Date  `json:"since"`
		Birth *Date `json:"birth"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"since":"2025-06-01","birth":null}`), &payload))
	assert.Equal(t, "2025-06-01", payload.Since.String())
	assert.Nil(t, payload.Birth)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"since":"2025-06-01","birth":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"since":"01/06/2025"}`), &payload))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2025-06-01"))
	assert.Equal(t, "2025-06-01", d.String())

	require.NoError(t, d.Scan([]byte("2024-02-29T00:00:00Z")))
	assert.Equal(t, "2024-02-29", d.String())

	require.NoError(t, d.Scan(time.Date(2023, 7, 9, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2023-07-09", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestDateValue(t *testing.T) {
	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = NewDate(time.Date(2025, 1, 2, 23, 59, 0, 0, time.UTC)).Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", v)
}

func TestAccountBeforeCreate(t *testing.T) {
	admin := &Account{Email: " Root@Example.com ", IsPlatformAdmin: true}
	require.NoError(t, admin.BeforeCreate(nil))
	assert.Equal(t, "root@example.com", admin.Email)
	assert.Nil(t, admin.TenantID)

	orphan := &Account{Email: "a@example.com"}
	assert.ErrorIs(t, orphan.BeforeCreate(nil), ErrAccountScope)
}
