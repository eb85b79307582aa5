package coaching

import (
	"sort"
	"sync"

	"github.com/2beens/fitcoach/internal/coaching/day"
	"github.com/2beens/fitcoach/internal/coaching/resolve"
	"github.com/2beens/fitcoach/internal/coaching/roster"
	"github.com/2beens/fitcoach/internal/telemetry/metrics"
)

// ClientState is an immutable snapshot of one client. It is never changed after it was put
// into the Cache; every update builds a new one.
type ClientState struct {
	Profile roster.ClientProfile
	// History is nil until the client's records were loaded.
	History *resolve.History
	// Messages is nil until the conversation was loaded.
	Messages []roster.Message
}

func (s *ClientState) withHistory(h *resolve.History) *ClientState {
	c := *s
	c.History = h
	return &c
}

func (s *ClientState) withProfile(p roster.ClientProfile) *ClientState {
	c := *s
	c.Profile = p
	return &c
}

func (s *ClientState) withMessages(messages []roster.Message) *ClientState {
	c := *s
	c.Messages = messages
	return &c
}

type Cache struct {
	mutex          sync.RWMutex
	clients        map[string]*ClientState
	metricsManager *metrics.Manager
}

func NewCache(metricsManager *metrics.Manager) *Cache {
	return &Cache{
		clients:        make(map[string]*ClientState),
		metricsManager: metricsManager,
	}
}

// must be called with the write lock held
func (c *Cache) updateGauge() {
	if c.metricsManager == nil {
		return
	}
	c.metricsManager.GaugeCachedClients.Set(float64(len(c.clients)))
}

func (c *Cache) Get(clientID string) (*ClientState, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	s, ok := c.clients[clientID]
	return s, ok
}

func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.clients)
}

// Profiles lists the cached client profiles, oldest client first.
func (c *Cache) Profiles() []roster.ClientProfile {
	c.mutex.RLock()
	profiles := make([]roster.ClientProfile, 0, len(c.clients))
	for _, s := range c.clients {
		profiles = append(profiles, s.Profile)
	}
	c.mutex.RUnlock()

	sortProfiles(profiles)
	return profiles
}

func sortProfiles(profiles []roster.ClientProfile) {
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].ID < profiles[j].ID
		}
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})
}

// Put stores state under its profile id and returns the entry it replaced, if any.
func (c *Cache) Put(state *ClientState) *ClientState {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	prev := c.clients[state.Profile.ID]
	c.clients[state.Profile.ID] = state
	c.updateGauge()
	return prev
}

// RevertRecord undoes a PutRecord of date on the current entry, leaving other dates as they are.
// A nil prev drops the record of date.
func (c *Cache) RevertRecord(clientID string, date day.Date, prev *day.DayRecord) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	state, ok := c.clients[clientID]
	if !ok || state.History == nil {
		return
	}
	if prev == nil {
		c.clients[clientID] = state.withHistory(state.History.Without(date))
	} else {
		c.clients[clientID] = state.withHistory(state.History.With(*prev))
	}
}

func (c *Cache) Remove(clientID string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.clients, clientID)
	c.updateGauge()
}

// PutRecord stores record into the client's History. It returns the entry it replaced, and false
// when the client or its History is not cached.
func (c *Cache) PutRecord(clientID string, record day.DayRecord) (*ClientState, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	prev, ok := c.clients[clientID]
	if !ok || prev.History == nil {
		return nil, false
	}
	c.clients[clientID] = prev.withHistory(prev.History.With(record))
	return prev, true
}

// ReplaceRecords swaps the whole History of a cached client.
func (c *Cache) ReplaceRecords(clientID string, records []day.DayRecord) bool {
	h := resolve.NewHistory(records)

	c.mutex.Lock()
	defer c.mutex.Unlock()
	prev, ok := c.clients[clientID]
	if !ok {
		return false
	}
	c.clients[clientID] = prev.withHistory(h)
	return true
}

// UpdateProfile swaps the profile of a cached client, keeping its History and messages.
func (c *Cache) UpdateProfile(profile roster.ClientProfile) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if prev, ok := c.clients[profile.ID]; ok {
		c.clients[profile.ID] = prev.withProfile(profile)
	} else {
		c.clients[profile.ID] = &ClientState{Profile: profile}
	}
	c.updateGauge()
}

func (c *Cache) SetMessages(clientID string, messages []roster.Message) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if prev, ok := c.clients[clientID]; ok {
		c.clients[clientID] = prev.withMessages(messages)
	}
}

// ReplaceClients swaps the client list for profiles. Clients missing from profiles are dropped.
// Loaded histories and messages of the remaining clients are kept, and so are their targets
// when the new profile carries none.
func (c *Cache) ReplaceClients(profiles []roster.ClientProfile) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	next := make(map[string]*ClientState, len(profiles))
	for _, p := range profiles {
		state := &ClientState{Profile: p}
		if prev, ok := c.clients[p.ID]; ok {
			state.History = prev.History
			state.Messages = prev.Messages
			if p.Targets == (day.Targets{}) {
				state.Profile.Targets = prev.Profile.Targets
			}
		}
		next[p.ID] = state
	}
	c.clients = next
	c.updateGauge()
}
