package dialog

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndLookup(t *testing.T) {
	m := NewManager()

	ok, err := m.Create("100", "200")
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, m.IsUserInDialog("100"))
	assert.True(t, m.IsAdminInDialog("200"))
	assert.False(t, m.IsUserInDialog("200"))
	assert.False(t, m.IsAdminInDialog("100"))

	d, found := m.ByUser("100")
	require.True(t, found)
	assert.Equal(t, "100", d.UserID)
	assert.Equal(t, "200", d.AdminID)
	assert.Equal(t, StatusOpen, d.Status)
	assert.False(t, d.StartedAt.IsZero())
}

func TestCreateDuplicateUser(t *testing.T) {
	m := NewManager()

	ok, err := m.Create("100", "200")
	require.NoError(t, err)
	require.True(t, ok)

	// Second admin claiming the same user loses.
	ok, err = m.Create("100", "300")
	require.NoError(t, err)
	assert.False(t, ok)

	d, found := m.ByUser("100")
	require.True(t, found)
	assert.Equal(t, "200", d.AdminID)
}

func TestCreateBusyAdmin(t *testing.T) {
	m := NewManager()

	ok, err := m.Create("100", "200")
	require.NoError(t, err)
	require.True(t, ok)

	// The same admin claiming a second user loses.
	ok, err = m.Create("101", "200")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.False(t, m.IsUserInDialog("101"))
	assert.Equal(t, 1, m.Count())
}

func TestCreateInvalidIDs(t *testing.T) {
	m := NewManager()

	for _, tc := range []struct{ user, admin string }{
		{"", "200"},
		{"100", ""},
		{"abc", "200"},
		{"100", "2x0"},
		{"-100", "200"},
		{"10 0", "200"},
	} {
		ok, err := m.Create(tc.user, tc.admin)
		assert.ErrorIs(t, err, ErrInvalidID, "user=%q admin=%q", tc.user, tc.admin)
		assert.False(t, ok)
	}

	assert.Equal(t, 0, m.Count())
}

func TestCanonicalID(t *testing.T) {
	m := NewManager()

	ok, err := m.Create(CanonicalID(1234567), "200")
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, m.IsUserInDialog("1234567"))
}

func TestParticipantUserWins(t *testing.T) {
	m := NewManager()

	ok, err := m.Create("100", "200")
	require.NoError(t, err)
	require.True(t, ok)

	role, d, found := m.Participant("100")
	require.True(t, found)
	assert.Equal(t, RoleUser, role)
	assert.Equal(t, "200", d.AdminID)

	role, d, found = m.Participant("200")
	require.True(t, found)
	assert.Equal(t, RoleAdmin, role)
	assert.Equal(t, "100", d.UserID)

	_, _, found = m.Participant("999")
	assert.False(t, found)

	// An ID present on both sides resolves as the user side.
	ok, err = m.Create("200", "300")
	require.NoError(t, err)
	require.True(t, ok)

	role, d, found = m.Participant("200")
	require.True(t, found)
	assert.Equal(t, RoleUser, role)
	assert.Equal(t, "300", d.AdminID)
}

func TestClose(t *testing.T) {
	m := NewManager()

	ok, err := m.Create("100", "200")
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, m.Close("100"))
	assert.False(t, m.IsUserInDialog("100"))
	assert.False(t, m.IsAdminInDialog("200"))

	// Closing twice is a no-op.
	assert.False(t, m.Close("100"))

	// Both sides are claimable again.
	ok, err = m.Create("100", "200")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCleanupStale(t *testing.T) {
	m := NewManager()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	ok, err := m.Create("100", "200")
	require.NoError(t, err)
	require.True(t, ok)

	m.now = func() time.Time { return base.Add(10 * time.Minute) }
	ok, err = m.Create("101", "201")
	require.NoError(t, err)
	require.True(t, ok)

	// 31 minutes after the first dialog started only that one is stale.
	m.now = func() time.Time { return base.Add(31 * time.Minute) }
	removed := m.CleanupStale(30 * time.Minute)

	require.Len(t, removed, 1)
	assert.Equal(t, "100", removed[0].UserID)
	assert.Equal(t, "200", removed[0].AdminID)

	assert.False(t, m.IsUserInDialog("100"))
	assert.True(t, m.IsUserInDialog("101"))
}

func TestCleanupStaleBoundary(t *testing.T) {
	m := NewManager()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	ok, err := m.Create("100", "200")
	require.NoError(t, err)
	require.True(t, ok)

	// Age exactly equal to the timeout is not stale yet.
	m.now = func() time.Time { return base.Add(30 * time.Minute) }
	assert.Empty(t, m.CleanupStale(30*time.Minute))
	assert.True(t, m.IsUserInDialog("100"))

	m.now = func() time.Time { return base.Add(30*time.Minute + time.Nanosecond) }
	assert.Len(t, m.CleanupStale(30*time.Minute), 1)
}

func TestCreateRaceSingleWinner(t *testing.T) {
	m := NewManager()

	const admins = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	wg.Add(admins)
	for i := 0; i < admins; i++ {
		adminID := CanonicalID(int64(200 + i))
		go func() {
			defer wg.Done()
			ok, err := m.Create("100", adminID)
			if err != nil {
				t.Error(err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, m.Count())
}

func TestCreateSameAdminRaceSingleWinner(t *testing.T) {
	m := NewManager()

	const users = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	wg.Add(users)
	for i := 0; i < users; i++ {
		userID := CanonicalID(int64(100 + i))
		go func() {
			defer wg.Done()
			ok, err := m.Create(userID, "200")
			if err != nil {
				t.Error(err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, m.Count())
	assert.True(t, m.IsAdminInDialog("200"))
}
