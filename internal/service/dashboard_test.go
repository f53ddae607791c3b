package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	grace := f.tenant("Grace")
	hope := f.tenant("Hope")
	f.account(&grace.ID, "a@example.com")
	inactive := f.account(&grace.ID, "b@example.com")
	require.NoError(t, f.store.DB(f.ctx).Model(inactive).Update("is_active", false).Error)
	f.account(&hope.ID, "c@example.com")
	f.member(grace.ID, "Ama", "Mensah")
	f.member(hope.ID, "Yaw", "Owusu")

	stats, err := f.svcs.Dashboard.Stats(f.ctx, within(grace))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveUsers)
	assert.Equal(t, int64(1), stats.TotalMembers)
	assert.Zero(t, stats.TotalVisitors)

	stats, err = f.svcs.Dashboard.Stats(f.ctx, global())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalMembers)
}
